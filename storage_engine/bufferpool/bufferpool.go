// Package bufferpool implements the pin-counted buffer-manager contract:
// alloc_page / read_page (both return with the page pinned),
// unpin_page(dirty), and flush_file.
//
// Pages are cached by page number behind a pin count. When the pool is full
// and a new page must be brought in, victim selection is informed by a
// ristretto cache used purely as an eviction-hint policy (TinyLFU-style
// admission/eviction over page numbers) — the pin discipline itself has
// nothing to do with ristretto and is enforced directly against frame
// PinCount fields, since pinning is this package's contract to its callers,
// not something a general-purpose cache library can express.
package bufferpool

import (
	"fmt"
	"log"
	"os"

	ristretto "github.com/dgraph-io/ristretto/v2"

	diskmanager "bptreeindex/storage_engine/disk_manager"
	"bptreeindex/storage_engine/page"
)

// NewBufferPool creates a pool of the given frame capacity over file,
// logging diagnostics to os.Stderr.
func NewBufferPool(capacity int, file *diskmanager.File) (*BufferPool, error) {
	return NewBufferPoolWithLogger(capacity, file, log.New(os.Stderr, "", log.LstdFlags))
}

// NewBufferPoolWithLogger is NewBufferPool with an injected logger. The
// index and heap-file packages call NewBufferPool and so log to os.Stderr.
func NewBufferPoolWithLogger(capacity int, file *diskmanager.File, logger *log.Logger) (*BufferPool, error) {
	bp := &BufferPool{
		frames:     make(map[int64]*page.Page, capacity),
		capacity:   capacity,
		file:       file,
		log:        logger,
		evictHints: make(chan int64, capacity*2),
	}

	hints, err := ristretto.NewCache(&ristretto.Config[uint64, struct{}]{
		NumCounters: int64(capacity) * 10,
		MaxCost:     int64(capacity),
		BufferItems: 64,
		OnEvict: func(item *ristretto.Item[struct{}]) {
			select {
			case bp.evictHints <- int64(item.Key):
			default:
				// hint queue full — the linear unpinned-frame scan in
				// evictVictim is the fallback, so dropping a hint here
				// only costs a little eviction quality, never correctness.
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bufferpool: failed to start eviction-hint cache: %w", err)
	}
	bp.hints = hints

	return bp, nil
}

// touch records an access against the eviction-hint policy.
func (bp *BufferPool) touch(pageNo int64) {
	bp.hints.Set(uint64(pageNo), struct{}{}, 1)
}

// FetchPage returns pageNo pinned, loading it from the paged file on a
// cache miss.
func (bp *BufferPool) FetchPage(pageNo int64) (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if pg, ok := bp.frames[pageNo]; ok {
		bp.touch(pageNo)
		pg.Lock()
		pg.PinCount++
		pg.Unlock()
		return pg, nil
	}

	bp.log.Printf("[bufferpool] miss pageNo=%d — reading from disk", pageNo)

	pg := page.NewPage(pageNo)
	if err := bp.file.ReadPage(pageNo, pg.Data); err != nil {
		return nil, fmt.Errorf("bufferpool: failed to read page %d: %w", pageNo, err)
	}

	if err := bp.install(pg); err != nil {
		return nil, err
	}
	pg.PinCount++
	return pg, nil
}

// AllocatePage obtains a fresh, zero-filled page from the paged file and
// returns it pinned and dirty.
func (bp *BufferPool) AllocatePage() (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	pageNo, err := bp.file.AllocatePage()
	if err != nil {
		return nil, fmt.Errorf("bufferpool: failed to allocate page: %w", err)
	}

	pg := page.NewPage(pageNo)
	pg.IsDirty = true
	if err := bp.install(pg); err != nil {
		return nil, err
	}
	pg.PinCount++
	return pg, nil
}

// install adds pg to the pool, evicting a victim frame first if full.
// Caller holds bp.mu.
func (bp *BufferPool) install(pg *page.Page) error {
	if _, exists := bp.frames[pg.ID]; exists {
		bp.touch(pg.ID)
		return nil
	}
	if len(bp.frames) >= bp.capacity {
		if err := bp.evictVictim(); err != nil {
			return fmt.Errorf("bufferpool: %w", err)
		}
	}
	bp.frames[pg.ID] = pg
	bp.touch(pg.ID)
	return nil
}

// UnpinPage decrements pageNo's pin count and, if dirty is true, marks it
// dirty for a later flush.
func (bp *BufferPool) UnpinPage(pageNo int64, dirty bool) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	pg, exists := bp.frames[pageNo]
	if !exists {
		return fmt.Errorf("bufferpool: page %d not in pool", pageNo)
	}

	pg.Lock()
	defer pg.Unlock()
	if pg.PinCount > 0 {
		pg.PinCount--
	}
	if dirty {
		pg.IsDirty = true
	}
	return nil
}

// MarkDirty flags pageNo dirty without touching its pin count.
func (bp *BufferPool) MarkDirty(pageNo int64) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	pg, exists := bp.frames[pageNo]
	if !exists {
		return fmt.Errorf("bufferpool: page %d not in pool", pageNo)
	}
	pg.Lock()
	pg.IsDirty = true
	pg.Unlock()
	return nil
}

// FlushFile writes every dirty frame back to the paged file.
func (bp *BufferPool) FlushFile() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.flushAllLocked()
}

func (bp *BufferPool) flushAllLocked() error {
	for pageNo, pg := range bp.frames {
		pg.Lock()
		if pg.IsDirty {
			if err := bp.file.WritePage(pageNo, pg.Data); err != nil {
				pg.Unlock()
				return fmt.Errorf("bufferpool: failed to flush page %d: %w", pageNo, err)
			}
			pg.IsDirty = false
		}
		pg.Unlock()
	}
	return nil
}

// Close flushes every dirty frame and shuts down the eviction-hint cache.
// It does not close the underlying paged file — callers own that handle.
func (bp *BufferPool) Close() error {
	bp.mu.Lock()
	err := bp.flushAllLocked()
	bp.mu.Unlock()

	bp.hints.Close()
	if err != nil {
		return err
	}
	return nil
}

// evictVictim removes one currently-unpinned frame, flushing it first if
// dirty. Caller holds bp.mu. Candidates surfacing from ristretto's eviction
// policy are tried first; if none are present or all are pinned, a linear
// scan over resident frames is the fallback.
func (bp *BufferPool) evictVictim() error {
	pending := len(bp.evictHints)
	for i := 0; i < pending; i++ {
		candidate := <-bp.evictHints
		if bp.tryEvict(candidate) {
			return nil
		}
	}

	for pageNo := range bp.frames {
		if bp.tryEvict(pageNo) {
			return nil
		}
	}
	return fmt.Errorf("all %d frames are pinned, cannot evict", len(bp.frames))
}

// tryEvict evicts pageNo if it is resident and unpinned, flushing it first
// if dirty. Reports whether it evicted anything.
func (bp *BufferPool) tryEvict(pageNo int64) bool {
	pg, exists := bp.frames[pageNo]
	if !exists {
		return false
	}

	pg.Lock()
	if pg.PinCount > 0 {
		pg.Unlock()
		return false
	}
	if pg.IsDirty {
		if err := bp.file.WritePage(pageNo, pg.Data); err != nil {
			pg.Unlock()
			bp.log.Printf("[bufferpool] failed to flush page %d during eviction: %v", pageNo, err)
			return false
		}
		pg.IsDirty = false
	}
	pg.Unlock()

	delete(bp.frames, pageNo)
	bp.hints.Del(uint64(pageNo))
	return true
}
