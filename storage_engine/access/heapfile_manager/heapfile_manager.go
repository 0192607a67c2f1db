package heapfile

import (
	"fmt"

	"bptreeindex/storage_engine/bufferpool"
	diskmanager "bptreeindex/storage_engine/disk_manager"
	"bptreeindex/types"
)

// defaultPoolFrames bounds how many heap pages stay resident while scanning
// or bulk-inserting; small relations never evict, large ones stream.
const defaultPoolFrames = 64

// Open opens an existing heap file at path, or creates an empty one.
func Open(path string) (*HeapFile, error) {
	file, isNew, err := diskmanager.OpenOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("heapfile: %w", err)
	}

	pool, err := bufferpool.NewBufferPool(defaultPoolFrames, file)
	if err != nil {
		return nil, fmt.Errorf("heapfile: %w", err)
	}

	hf := &HeapFile{file: file, pool: pool}
	if !isNew {
		hf.lastPage = file.NumPages()
	}
	return hf, nil
}

// InsertRow appends data as a new row, allocating a fresh page when the
// current last page has no room, and returns the row's RecordId.
func (hf *HeapFile) InsertRow(data []byte) (types.RecordId, error) {
	hf.mu.Lock()
	defer hf.mu.Unlock()

	if hf.lastPage == 0 {
		pg, err := hf.pool.AllocatePage()
		if err != nil {
			return types.RecordId{}, fmt.Errorf("heapfile: %w", err)
		}
		initHeapPage(pg.Data)
		hf.lastPage = pg.ID
		if err := hf.pool.UnpinPage(pg.ID, true); err != nil {
			return types.RecordId{}, fmt.Errorf("heapfile: %w", err)
		}
	}

	pg, err := hf.pool.FetchPage(hf.lastPage)
	if err != nil {
		return types.RecordId{}, fmt.Errorf("heapfile: %w", err)
	}

	if heapFreeSpace(pg.Data) < len(data)+slotSize {
		if err := hf.pool.UnpinPage(pg.ID, false); err != nil {
			return types.RecordId{}, fmt.Errorf("heapfile: %w", err)
		}
		newPg, err := hf.pool.AllocatePage()
		if err != nil {
			return types.RecordId{}, fmt.Errorf("heapfile: %w", err)
		}
		initHeapPage(newPg.Data)
		hf.lastPage = newPg.ID
		pg = newPg
	}

	pg.Lock()
	slotIdx, err := heapInsert(pg.Data, data)
	pg.Unlock()
	if err != nil {
		hf.pool.UnpinPage(pg.ID, false)
		return types.RecordId{}, fmt.Errorf("heapfile: %w", err)
	}

	if err := hf.pool.UnpinPage(pg.ID, true); err != nil {
		return types.RecordId{}, fmt.Errorf("heapfile: %w", err)
	}

	return types.RecordId{PageNumber: pg.ID, SlotNumber: int32(slotIdx)}, nil
}

// ReadRow returns the row stored at rid.
func (hf *HeapFile) ReadRow(rid types.RecordId) ([]byte, error) {
	pg, err := hf.pool.FetchPage(rid.PageNumber)
	if err != nil {
		return nil, fmt.Errorf("heapfile: %w", err)
	}
	defer hf.pool.UnpinPage(rid.PageNumber, false)

	pg.RLock()
	row, err := heapRead(pg.Data, uint16(rid.SlotNumber))
	pg.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("heapfile: %w", err)
	}
	return row, nil
}

// NewScanner returns a scanner positioned before the first row.
func (hf *HeapFile) NewScanner() *Scanner {
	return &Scanner{hf: hf, pageNo: 1, slotIdx: 0, numPages: hf.file.NumPages()}
}

// Close flushes and releases the underlying buffer pool and paged file.
func (hf *HeapFile) Close() error {
	if err := hf.pool.Close(); err != nil {
		return fmt.Errorf("heapfile: %w", err)
	}
	if err := hf.file.Close(); err != nil {
		return fmt.Errorf("heapfile: %w", err)
	}
	return nil
}
