package bptree

import "fmt"

// allocLeaf obtains a fresh page from the buffer pool, zero-fills it, and
// stamps it as an empty leaf with no sibling. Returns the page pinned and
// dirty; the caller must unpin it.
func (t *Tree) allocLeaf() (pageNo int64, view leafView, err error) {
	pg, err := t.pool.AllocatePage()
	if err != nil {
		return 0, leafView{}, fmt.Errorf("bptree: failed to allocate leaf: %w", err)
	}
	initLeaf(pg.Data)
	return pg.ID, asLeaf(pg.Data), nil
}

// allocInternal obtains a fresh page, zero-fills it, and stamps it with the
// given level. Returns the page pinned and dirty; the caller must unpin it.
func (t *Tree) allocInternal(level int32) (pageNo int64, view internalView, err error) {
	pg, err := t.pool.AllocatePage()
	if err != nil {
		return 0, internalView{}, fmt.Errorf("bptree: failed to allocate internal node: %w", err)
	}
	initInternal(pg.Data, level)
	return pg.ID, asInternal(pg.Data), nil
}
