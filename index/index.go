package index

import (
	"fmt"
	"os"
	"path/filepath"

	"bptreeindex/bpterrors"
	"bptreeindex/bptree"
	heapfile "bptreeindex/storage_engine/access/heapfile_manager"
	"bptreeindex/storage_engine/bufferpool"
	diskmanager "bptreeindex/storage_engine/disk_manager"
	"bptreeindex/types"
)

// defaultPoolFrames bounds how many index pages stay resident at once.
const defaultPoolFrames = 128

// Index is an open B+Tree secondary index over one relation attribute.
type Index struct {
	cfg  Config
	file *diskmanager.File
	pool *bufferpool.BufferPool
	tree *bptree.Tree

	closed bool
}

// OpenOrCreate opens the index file for cfg under dir if it already exists,
// validating its persisted metadata against cfg, or creates it and
// bulk-loads it from rel if it does not. It returns the open Index and the
// canonical index-file name ("{relation_name}.{attr_byte_offset}").
func OpenOrCreate(dir string, cfg Config, rel *heapfile.HeapFile) (*Index, string, error) {
	if cfg.AttrType != types.Integer {
		return nil, "", bpterrors.ErrUnsupportedAttrType
	}

	name := cfg.FileName()
	path := filepath.Join(dir, name)

	file, isNew, err := diskmanager.OpenOrCreate(path)
	if err != nil {
		return nil, "", fmt.Errorf("index: %w", err)
	}

	pool, err := bufferpool.NewBufferPool(defaultPoolFrames, file)
	if err != nil {
		return nil, "", fmt.Errorf("index: %w", err)
	}

	ix := &Index{cfg: cfg, file: file, pool: pool}

	if isNew {
		if err := ix.createFresh(rel); err != nil {
			pool.Close()
			file.Close()
			os.Remove(path)
			return nil, "", err
		}
		return ix, name, nil
	}

	if err := ix.loadExisting(); err != nil {
		pool.Close()
		file.Close()
		return nil, "", err
	}
	return ix, name, nil
}

// createFresh allocates the metadata page and an initial empty root leaf,
// then bulk-loads every tuple from rel by extracting the integer key at
// cfg.AttrByteOffset and inserting (key, rid).
func (ix *Index) createFresh(rel *heapfile.HeapFile) error {
	metaPg, err := ix.pool.AllocatePage()
	if err != nil {
		return fmt.Errorf("index: failed to allocate metadata page: %w", err)
	}
	if metaPg.ID != metaPageNo {
		ix.pool.UnpinPage(metaPg.ID, false)
		return fmt.Errorf("index: expected metadata page to be page %d, got %d", metaPageNo, metaPg.ID)
	}

	ix.tree, err = bptree.NewEmpty(ix.pool, ix.persistRoot)
	if err != nil {
		ix.pool.UnpinPage(metaPg.ID, true)
		return err
	}

	m := metadata{
		relName:  ix.cfg.RelationName,
		attrOff:  ix.cfg.AttrByteOffset,
		attrType: ix.cfg.AttrType,
		rootPgNo: ix.tree.Root(),
	}
	if err := writeMetadata(metaPg.Data, m); err != nil {
		ix.pool.UnpinPage(metaPg.ID, true)
		return fmt.Errorf("index: %w", err)
	}
	if err := ix.pool.UnpinPage(metaPg.ID, true); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	if rel != nil {
		if err := ix.bulkLoad(rel); err != nil {
			return err
		}
	}

	if err := ix.pool.FlushFile(); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	return nil
}

// bulkLoad scans every tuple in rel, extracts the 4-byte integer key at
// cfg.AttrByteOffset assuming host byte order, and inserts (key, rid).
func (ix *Index) bulkLoad(rel *heapfile.HeapFile) error {
	sc := rel.NewScanner()
	for {
		rid, row, ok, err := sc.Next()
		if err != nil {
			return fmt.Errorf("index: bulk load: %w", err)
		}
		if !ok {
			return nil
		}
		key, err := extractKey(row, ix.cfg.AttrByteOffset)
		if err != nil {
			return fmt.Errorf("index: bulk load: %w", err)
		}
		if err := ix.tree.InsertEntry(key, rid); err != nil {
			return fmt.Errorf("index: bulk load: %w", err)
		}
	}
}

// loadExisting reads the metadata page of an already-existing index file
// and validates it against the caller's configuration.
func (ix *Index) loadExisting() error {
	metaPg, err := ix.pool.FetchPage(metaPageNo)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	m, err := readMetadata(metaPg.Data)
	ix.pool.UnpinPage(metaPageNo, false)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	if m.relName != ix.cfg.RelationName || m.attrOff != ix.cfg.AttrByteOffset || m.attrType != ix.cfg.AttrType {
		return bpterrors.ErrBadIndexInfo
	}

	ix.tree = bptree.New(ix.pool, m.rootPgNo, ix.persistRoot)
	return nil
}

func (ix *Index) persistRoot(newRoot int64) error {
	metaPg, err := ix.pool.FetchPage(metaPageNo)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	m, err := readMetadata(metaPg.Data)
	if err != nil {
		ix.pool.UnpinPage(metaPageNo, false)
		return fmt.Errorf("index: %w", err)
	}
	m.rootPgNo = newRoot
	if err := writeMetadata(metaPg.Data, m); err != nil {
		ix.pool.UnpinPage(metaPageNo, false)
		return fmt.Errorf("index: %w", err)
	}
	return ix.pool.UnpinPage(metaPageNo, true)
}

// InsertEntry inserts (key, rid) into the index.
func (ix *Index) InsertEntry(key int32, rid types.RecordId) error {
	return ix.tree.InsertEntry(key, rid)
}

// StartScan begins a bounded range scan; see bptree.Tree.StartScan.
func (ix *Index) StartScan(low int32, lowOp types.Operator, high int32, highOp types.Operator) error {
	return ix.tree.StartScan(low, lowOp, high, highOp)
}

// ScanNext yields the next in-range record; see bptree.Tree.ScanNext.
func (ix *Index) ScanNext() (types.RecordId, error) {
	return ix.tree.ScanNext()
}

// EndScan tears down the active scan; see bptree.Tree.EndScan.
func (ix *Index) EndScan() error {
	return ix.tree.EndScan()
}

// Close flushes the index file and releases its buffer pool and file
// handle. It is idempotent: a second call is a no-op, and every error is
// suppressed, matching the teardown contract that destruction must never
// raise.
func (ix *Index) Close() error {
	if ix.closed {
		return nil
	}
	ix.closed = true

	if ix.tree != nil {
		_ = ix.tree.EndScan() // no-op if no scan was active; errors suppressed
	}
	ix.pool.Close()
	ix.file.Close()
	return nil
}
