package index

import (
	"encoding/binary"
	"fmt"

	"bptreeindex/types"
)

// Metadata page (page 1 of every index file):
//
//	[0:20)   relation name, null-padded ASCII
//	[20:24)  attribute byte offset, int32
//	[24:28)  attribute type tag, int32
//	[28:36)  root page number, int64
const (
	metaRelNameLen  = 20
	metaOffRelName  = 0
	metaOffAttrOff  = metaRelNameLen
	metaOffAttrType = metaOffAttrOff + 4
	metaOffRoot     = metaOffAttrType + 4
	metaPageNo      = 1
)

type metadata struct {
	relName   string
	attrOff   int32
	attrType  types.AttrType
	rootPgNo  int64
}

func readMetadata(data []byte) (metadata, error) {
	raw := data[metaOffRelName : metaOffRelName+metaRelNameLen]
	end := metaRelNameLen
	for i, b := range raw {
		if b == 0 {
			end = i
			break
		}
	}

	attrType := types.AttrType(binary.LittleEndian.Uint32(data[metaOffAttrType:]))
	if attrType != types.Integer && attrType != types.Double && attrType != types.String {
		return metadata{}, fmt.Errorf("index: corrupt metadata page: attr type tag %d out of range", attrType)
	}

	return metadata{
		relName:  string(raw[:end]),
		attrOff:  int32(binary.LittleEndian.Uint32(data[metaOffAttrOff:])),
		attrType: attrType,
		rootPgNo: int64(binary.LittleEndian.Uint64(data[metaOffRoot:])),
	}, nil
}

func writeMetadata(data []byte, m metadata) error {
	if len(m.relName) > metaRelNameLen {
		return fmt.Errorf("index: relation name %q exceeds %d bytes", m.relName, metaRelNameLen)
	}
	for i := range data[metaOffRelName : metaOffRelName+metaRelNameLen] {
		data[metaOffRelName+i] = 0
	}
	copy(data[metaOffRelName:], m.relName)

	binary.LittleEndian.PutUint32(data[metaOffAttrOff:], uint32(m.attrOff))
	binary.LittleEndian.PutUint32(data[metaOffAttrType:], uint32(m.attrType))
	binary.LittleEndian.PutUint64(data[metaOffRoot:], uint64(m.rootPgNo))
	return nil
}
