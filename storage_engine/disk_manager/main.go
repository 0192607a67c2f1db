// Package diskmanager is the paged-file abstraction: a blob file of
// fixed-size pages identified by a positive page number, opened or created
// on disk and read/written a page at a time. It owns the *os.File handle and
// the page-count counter; it knows nothing about what a page's bytes mean —
// that is the buffer pool's caller's concern (heap file or B+Tree node).
package diskmanager

import (
	"fmt"
	"os"

	"bptreeindex/types"
)

// OpenOrCreate opens path if it exists, or creates it if it doesn't. isNew
// reports which happened, so callers (heap file / index lifecycle) know
// whether to initialize fresh structures or load existing ones.
func OpenOrCreate(path string) (file *File, isNew bool, err error) {
	_, statErr := os.Stat(path)
	isNew = os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, false, fmt.Errorf("diskmanager: failed to open %s: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("diskmanager: failed to stat %s: %w", path, err)
	}

	numPages := stat.Size() / types.PageSize

	return &File{
		path:       path,
		f:          f,
		nextPageNo: numPages + 1, // page numbers are 1-based; 0 is reserved
	}, isNew, nil
}

// AllocatePage reserves the next page number and extends the file with a
// zero-filled page so later reads never see a short read. It does not pin
// anything — the BufferPool does that when it wraps the returned bytes.
func (df *File) AllocatePage() (int64, error) {
	df.mu.Lock()
	defer df.mu.Unlock()

	pageNo := df.nextPageNo
	df.nextPageNo++

	zero := make([]byte, types.PageSize)
	offset := (pageNo - 1) * types.PageSize
	if _, err := df.f.WriteAt(zero, offset); err != nil {
		return 0, fmt.Errorf("diskmanager: failed to extend file for page %d: %w", pageNo, err)
	}
	return pageNo, nil
}

// ReadPage fills buf (which must be types.PageSize bytes) with the contents
// of pageNo.
func (df *File) ReadPage(pageNo int64, buf []byte) error {
	if pageNo <= 0 {
		return fmt.Errorf("diskmanager: invalid page number %d", pageNo)
	}
	if len(buf) != types.PageSize {
		return fmt.Errorf("diskmanager: read buffer must be %d bytes, got %d", types.PageSize, len(buf))
	}

	df.mu.RLock()
	defer df.mu.RUnlock()

	offset := (pageNo - 1) * types.PageSize
	n, err := df.f.ReadAt(buf, offset)
	if err != nil && n == 0 {
		return fmt.Errorf("diskmanager: failed to read page %d: %w", pageNo, err)
	}
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return nil
}

// WritePage writes data (exactly types.PageSize bytes) to pageNo.
func (df *File) WritePage(pageNo int64, data []byte) error {
	if pageNo <= 0 {
		return fmt.Errorf("diskmanager: invalid page number %d", pageNo)
	}
	if len(data) != types.PageSize {
		return fmt.Errorf("diskmanager: page data must be %d bytes, got %d", types.PageSize, len(data))
	}

	df.mu.Lock()
	defer df.mu.Unlock()

	offset := (pageNo - 1) * types.PageSize
	if _, err := df.f.WriteAt(data, offset); err != nil {
		return fmt.Errorf("diskmanager: failed to write page %d: %w", pageNo, err)
	}
	return nil
}

// NumPages returns the number of pages currently allocated in the file.
func (df *File) NumPages() int64 {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return df.nextPageNo - 1
}

// Sync flushes OS buffers for this file to stable storage.
func (df *File) Sync() error {
	df.mu.RLock()
	defer df.mu.RUnlock()
	if err := df.f.Sync(); err != nil {
		return fmt.Errorf("diskmanager: failed to sync %s: %w", df.path, err)
	}
	return nil
}

// Close syncs and closes the underlying file handle. Safe to call once;
// a second call errors on the closed *os.File. Index.Close guards against
// calling it twice; HeapFile.Close does not.
func (df *File) Close() error {
	df.mu.Lock()
	defer df.mu.Unlock()
	if err := df.f.Sync(); err != nil {
		return fmt.Errorf("diskmanager: failed to sync before close: %w", err)
	}
	if err := df.f.Close(); err != nil {
		return fmt.Errorf("diskmanager: failed to close %s: %w", df.path, err)
	}
	return nil
}

// Path returns the filesystem path this File was opened from.
func (df *File) Path() string { return df.path }
