package index

import (
	"encoding/binary"
	"fmt"
)

// extractKey reads the 4-byte integer key at offset within row, assuming
// host byte order the way the relation's own record layout was written.
func extractKey(row []byte, offset int32) (int32, error) {
	if offset < 0 || int(offset)+4 > len(row) {
		return 0, fmt.Errorf("attribute offset %d out of range for a %d-byte row", offset, len(row))
	}
	return int32(binary.NativeEndian.Uint32(row[offset:])), nil
}
