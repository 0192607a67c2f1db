package diskmanager

import (
	"bytes"
	"path/filepath"
	"testing"

	"bptreeindex/types"
)

func TestFileAllocateReadWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.idx")

	file, isNew, err := OpenOrCreate(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if !isNew {
		t.Fatalf("expected a brand new file to report isNew=true")
	}
	defer file.Close()

	pageNo, err := file.AllocatePage()
	if err != nil {
		t.Fatalf("failed to allocate page: %v", err)
	}
	if pageNo != 1 {
		t.Errorf("expected first page number to be 1, got %d", pageNo)
	}

	data := make([]byte, types.PageSize)
	copy(data, []byte("hello disk manager"))
	if err := file.WritePage(pageNo, data); err != nil {
		t.Fatalf("failed to write page: %v", err)
	}

	readBack := make([]byte, types.PageSize)
	if err := file.ReadPage(pageNo, readBack); err != nil {
		t.Fatalf("failed to read page: %v", err)
	}
	if !bytes.Equal(data, readBack) {
		t.Errorf("data mismatch after write/read round trip")
	}

	pageNo2, err := file.AllocatePage()
	if err != nil {
		t.Fatalf("failed to allocate second page: %v", err)
	}
	if pageNo2 != 2 {
		t.Errorf("expected second page number to be 2, got %d", pageNo2)
	}
	if file.NumPages() != 2 {
		t.Errorf("expected NumPages()=2, got %d", file.NumPages())
	}
}

func TestFileReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.idx")

	file, _, err := OpenOrCreate(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	pageNo, err := file.AllocatePage()
	if err != nil {
		t.Fatalf("failed to allocate page: %v", err)
	}
	data := make([]byte, types.PageSize)
	copy(data, []byte("persisted"))
	if err := file.WritePage(pageNo, data); err != nil {
		t.Fatalf("failed to write page: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("failed to close file: %v", err)
	}

	reopened, isNew, err := OpenOrCreate(path)
	if err != nil {
		t.Fatalf("failed to reopen file: %v", err)
	}
	if isNew {
		t.Errorf("expected reopening an existing file to report isNew=false")
	}
	defer reopened.Close()

	readBack := make([]byte, types.PageSize)
	if err := reopened.ReadPage(pageNo, readBack); err != nil {
		t.Fatalf("failed to read page after reopen: %v", err)
	}
	if !bytes.Equal(data, readBack) {
		t.Errorf("data not persisted correctly across reopen")
	}

	nextPageNo, err := reopened.AllocatePage()
	if err != nil {
		t.Fatalf("failed to allocate after reopen: %v", err)
	}
	if nextPageNo != 2 {
		t.Errorf("expected allocation after reopen to continue at page 2, got %d", nextPageNo)
	}
}

func TestWritePageRejectsWrongSize(t *testing.T) {
	dir := t.TempDir()
	file, _, err := OpenOrCreate(filepath.Join(dir, "size.idx"))
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer file.Close()

	pageNo, err := file.AllocatePage()
	if err != nil {
		t.Fatalf("failed to allocate page: %v", err)
	}

	if err := file.WritePage(pageNo, make([]byte, types.PageSize-1)); err == nil {
		t.Error("expected an error writing an undersized page")
	}
	if err := file.WritePage(pageNo, make([]byte, types.PageSize+1)); err == nil {
		t.Error("expected an error writing an oversized page")
	}
}

func TestReadPageZeroIsInvalid(t *testing.T) {
	dir := t.TempDir()
	file, _, err := OpenOrCreate(filepath.Join(dir, "zero.idx"))
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer file.Close()

	if err := file.ReadPage(0, make([]byte, types.PageSize)); err == nil {
		t.Error("expected page number 0 to be rejected")
	}
}

