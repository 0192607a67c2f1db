package bptree

import (
	"bptreeindex/storage_engine/bufferpool"
)

// Tree is the B+Tree engine: page-node layout, split-propagating insertion,
// root promotion, leaf chaining, and range scans, all driven through a
// shared buffer pool. It owns no file handle and no metadata page directly —
// root page number changes are reported to onRootChange, which the index
// lifecycle (the package wiring Tree to a metadata page) uses to persist the
// new root.
type Tree struct {
	pool *bufferpool.BufferPool
	root int64

	onRootChange func(newRoot int64) error

	scan *scanState
}

// New wraps an existing root page number with a Tree. onRootChange is
// invoked synchronously whenever the root page changes (root promotion);
// it may be nil if the caller does not need to persist root changes.
func New(pool *bufferpool.BufferPool, rootPageNo int64, onRootChange func(int64) error) *Tree {
	return &Tree{pool: pool, root: rootPageNo, onRootChange: onRootChange}
}

// NewEmpty allocates a fresh, empty root leaf and returns a Tree positioned
// at it. Used by the index lifecycle when creating a brand new index file.
func NewEmpty(pool *bufferpool.BufferPool, onRootChange func(int64) error) (*Tree, error) {
	t := &Tree{pool: pool, onRootChange: onRootChange}
	rootPageNo, _, err := t.allocLeaf()
	if err != nil {
		return nil, err
	}
	if err := pool.UnpinPage(rootPageNo, true); err != nil {
		return nil, err
	}
	t.root = rootPageNo
	return t, nil
}

// Root returns the current root page number.
func (t *Tree) Root() int64 { return t.root }

func (t *Tree) setRoot(pageNo int64) error {
	t.root = pageNo
	if t.onRootChange != nil {
		return t.onRootChange(pageNo)
	}
	return nil
}
