// Package index is the index lifecycle (C7): opening or creating an index
// file, bulk-loading it from a relation's heap file on first creation, and
// tearing it down on close. The B+Tree engine itself lives in bptree; this
// package wires it to a metadata page and a relation scanner.
package index

import (
	"fmt"

	"bptreeindex/types"
)

// Config names the relation attribute this index is built over.
type Config struct {
	RelationName   string
	AttrByteOffset int32
	AttrType       types.AttrType
}

// FileName returns the canonical on-disk index-file name for cfg, formed
// as "{relation_name}.{attr_byte_offset}".
func (cfg Config) FileName() string {
	return fmt.Sprintf("%s.%d", cfg.RelationName, cfg.AttrByteOffset)
}
