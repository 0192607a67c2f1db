// Package page defines the in-memory representation of a single fixed-size
// page as it sits pinned in a BufferPool frame. Both the heap file and the
// B+Tree index file share this struct; each layer interprets Data according
// to its own on-disk layout (heap: storage_engine/access/heapfile_manager;
// index: the bptree package's leaf/internal node views).
package page

import (
	"sync"

	"bptreeindex/types"
)

// Page is one buffer-pool frame: a page number, its raw bytes, and the
// pin/dirty bookkeeping the buffer manager contract requires.
type Page struct {
	ID       int64
	Data     []byte
	IsDirty  bool
	PinCount int32

	mu sync.RWMutex
}

// NewPage allocates a zero-filled frame for page number id.
func NewPage(id int64) *Page {
	return &Page{
		ID:   id,
		Data: make([]byte, types.PageSize),
	}
}

func (p *Page) Lock()    { p.mu.Lock() }
func (p *Page) Unlock()  { p.mu.Unlock() }
func (p *Page) RLock()   { p.mu.RLock() }
func (p *Page) RUnlock() { p.mu.RUnlock() }
