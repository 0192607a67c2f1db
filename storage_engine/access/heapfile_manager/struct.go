// Package heapfile is the relation-scanner collaborator: an unordered,
// append-only store of fixed-format rows that the index's bulk-load path
// scans once to seed a tree. Rows are never deleted or updated in place, so
// there is no tombstone or slot-reuse machinery.
package heapfile

import (
	"sync"

	"bptreeindex/storage_engine/bufferpool"
	diskmanager "bptreeindex/storage_engine/disk_manager"
)

// HeapFile is a single paged file of slotted pages holding fixed-format rows.
type HeapFile struct {
	file *diskmanager.File
	pool *bufferpool.BufferPool

	mu       sync.Mutex
	lastPage int64 // page most recently appended to; 0 if none allocated yet
}

// Scanner walks every live row of a HeapFile in page/slot order.
type Scanner struct {
	hf       *HeapFile
	pageNo   int64
	slotIdx  uint16
	numPages int64
}
