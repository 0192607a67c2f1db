package bufferpool

import (
	"log"
	"sync"

	ristretto "github.com/dgraph-io/ristretto/v2"

	diskmanager "bptreeindex/storage_engine/disk_manager"
	"bptreeindex/storage_engine/page"
)

// ############################################# BUFFER POOL #############################################

// BufferPool is a pin-counted cache of pages backed by a single paged File.
// Eviction victim selection is informed by a ristretto admission/eviction
// policy (see evictHints in bufferpool.go) instead of the hand-rolled LRU
// slice an earlier version of this pool used; pin-count accounting itself
// stays bespoke, since no general-purpose cache library understands
// "pinned".
type BufferPool struct {
	frames   map[int64]*page.Page // pageNo -> Page
	capacity int
	file     *diskmanager.File
	log      *log.Logger

	hints      *ristretto.Cache[uint64, struct{}]
	evictHints chan int64 // page numbers ristretto has flagged as cold

	mu sync.Mutex
}

// Stats reports buffer pool occupancy, for diagnostics and tests.
type Stats struct {
	Frames      int
	PinnedPages int
	DirtyPages  int
	Capacity    int
}
