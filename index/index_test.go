package index

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"bptreeindex/bpterrors"
	heapfile "bptreeindex/storage_engine/access/heapfile_manager"
	"bptreeindex/storage_engine/bufferpool"
	diskmanager "bptreeindex/storage_engine/disk_manager"
	"bptreeindex/types"
)

// encodeRow builds a fixed-format row with the integer key at byte offset
// 0, the way a relation's tuple bytes would carry an indexed attribute.
func encodeRow(key int32) []byte {
	buf := make([]byte, 8)
	binary.NativeEndian.PutUint32(buf, uint32(key))
	return buf
}

func buildRelation(t *testing.T, dir string, keys []int32) *heapfile.HeapFile {
	t.Helper()
	rel, err := heapfile.Open(filepath.Join(dir, "students.heap"))
	if err != nil {
		t.Fatalf("failed to open relation heap file: %v", err)
	}
	for _, k := range keys {
		if _, err := rel.InsertRow(encodeRow(k)); err != nil {
			t.Fatalf("failed to insert relation row: %v", err)
		}
	}
	return rel
}

func TestOpenOrCreateBulkLoadsAndScans(t *testing.T) {
	dir := t.TempDir()
	rel := buildRelation(t, dir, []int32{5, 1, 4, 2, 3})
	defer rel.Close()

	cfg := Config{RelationName: "students", AttrByteOffset: 0, AttrType: types.Integer}
	ix, name, err := OpenOrCreate(dir, cfg, rel)
	if err != nil {
		t.Fatalf("failed to open or create index: %v", err)
	}
	defer ix.Close()

	if name != "students.0" {
		t.Errorf("expected index file name %q, got %q", "students.0", name)
	}

	if err := ix.StartScan(1, types.GTE, 5, types.LTE); err != nil {
		t.Fatalf("failed to start scan: %v", err)
	}
	for want := int32(1); want <= 5; want++ {
		r, err := ix.ScanNext()
		if err != nil {
			t.Fatalf("unexpected scan error before %d: %v", want, err)
		}
		if r.PageNumber == 0 {
			t.Errorf("expected a non-sentinel RecordId for key %d", want)
		}
	}
	if _, err := ix.ScanNext(); err != bpterrors.ErrIndexScanCompleted {
		t.Errorf("expected scan completion, got %v", err)
	}
}

func TestReopenValidatesMetadata(t *testing.T) {
	dir := t.TempDir()
	rel := buildRelation(t, dir, []int32{1, 2, 3})
	defer rel.Close()

	cfg := Config{RelationName: "students", AttrByteOffset: 0, AttrType: types.Integer}
	ix, _, err := OpenOrCreate(dir, cfg, rel)
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("failed to close index: %v", err)
	}

	reopened, _, err := OpenOrCreate(dir, cfg, nil)
	if err != nil {
		t.Fatalf("failed to reopen index: %v", err)
	}
	defer reopened.Close()

	if err := reopened.StartScan(1, types.GTE, 3, types.LTE); err != nil {
		t.Fatalf("failed to scan reopened index: %v", err)
	}

	badCfg := Config{RelationName: "students", AttrByteOffset: 4, AttrType: types.Integer}
	if _, _, err := OpenOrCreate(dir, badCfg, nil); err != nil {
		t.Fatalf("a mismatched offset should create a distinct index file, not fail: %v", err)
	}
}

func TestOpenExistingWithMismatchedConfigFails(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{RelationName: "students", AttrByteOffset: 0, AttrType: types.Integer}
	ix, name, err := OpenOrCreate(dir, cfg, nil)
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("failed to close index: %v", err)
	}

	// Simulate the file at this path having been built for a different
	// relation than cfg now claims, e.g. because it was copied from
	// elsewhere. Tamper with the persisted metadata directly, bypassing
	// OpenOrCreate, then reopen with the original cfg.
	path := filepath.Join(dir, name)
	file, _, err := diskmanager.OpenOrCreate(path)
	if err != nil {
		t.Fatalf("failed to reopen file directly: %v", err)
	}
	pool, err := bufferpool.NewBufferPool(4, file)
	if err != nil {
		t.Fatalf("failed to create buffer pool: %v", err)
	}
	metaPg, err := pool.FetchPage(metaPageNo)
	if err != nil {
		t.Fatalf("failed to fetch metadata page: %v", err)
	}
	if err := writeMetadata(metaPg.Data, metadata{relName: "not_students", attrOff: 0, attrType: types.Integer, rootPgNo: 2}); err != nil {
		t.Fatalf("failed to tamper with metadata: %v", err)
	}
	pool.UnpinPage(metaPageNo, true)
	pool.Close()
	file.Close()

	if _, _, err := OpenOrCreate(dir, cfg, nil); err != bpterrors.ErrBadIndexInfo {
		t.Errorf("expected ErrBadIndexInfo for mismatched metadata, got %v", err)
	}
}

func TestUnsupportedAttrTypeRejected(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{RelationName: "students", AttrByteOffset: 0, AttrType: types.String}
	if _, _, err := OpenOrCreate(dir, cfg, nil); err != bpterrors.ErrUnsupportedAttrType {
		t.Errorf("expected ErrUnsupportedAttrType, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{RelationName: "students", AttrByteOffset: 0, AttrType: types.Integer}
	ix, _, err := OpenOrCreate(dir, cfg, nil)
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("first close should succeed: %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("second close should be a no-op, not error: %v", err)
	}
}

func TestInsertEntryAfterOpen(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{RelationName: "students", AttrByteOffset: 0, AttrType: types.Integer}
	ix, _, err := OpenOrCreate(dir, cfg, nil)
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	defer ix.Close()

	for i := int32(1); i <= 50; i++ {
		if err := ix.InsertEntry(i, types.RecordId{PageNumber: int64(i), SlotNumber: 0}); err != nil {
			t.Fatalf("failed to insert %d: %v", i, err)
		}
	}

	if err := ix.StartScan(10, types.GT, 20, types.LTE); err != nil {
		t.Fatalf("failed to start scan: %v", err)
	}
	count := 0
	for {
		_, err := ix.ScanNext()
		if err == bpterrors.ErrIndexScanCompleted {
			break
		}
		if err != nil {
			t.Fatalf("unexpected scan error: %v", err)
		}
		count++
	}
	if count != 10 {
		t.Errorf("expected 10 keys in (10,20], got %d", count)
	}
}
