package diskmanager

import (
	"os"
	"sync"
)

// File represents one on-disk paged file: a sequence of fixed-size pages
// identified by a positive page number. Page number 0 is reserved to mean
// "absent" and is never written to. One File is opened per heap relation and
// one per B+Tree index file, rather than sharing a catalog-wide page-ID
// space across many files.
type File struct {
	path       string
	f          *os.File
	nextPageNo int64 // next page number AllocatePage will hand out
	mu         sync.RWMutex
}
