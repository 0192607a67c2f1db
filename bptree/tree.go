package bptree

import (
	"fmt"

	"bptreeindex/types"
)

// InsertEntry inserts (key, rid) into the tree, driving the recursive
// split-propagating descent and growing a new root if the current root
// splits.
func (t *Tree) InsertEntry(key int32, rid types.RecordId) error {
	split, promotedKey, newChildPageNo, err := t.insertRecursive(t.root, key, rid)
	if err != nil {
		return err
	}
	if !split {
		return nil
	}
	return t.growRoot(promotedKey, newChildPageNo)
}

// insertRecursive descends from pageNo to the leaf that should hold key,
// inserting along the way and propagating splits back up. Each node is
// unpinned before recursing into its child so at most one page is pinned at
// a time on the way down; a node that needs to absorb a promoted entry on
// the way back up is re-fetched.
func (t *Tree) insertRecursive(pageNo int64, key int32, rid types.RecordId) (split bool, promotedKey int32, newPageNo int64, err error) {
	pg, err := t.pool.FetchPage(pageNo)
	if err != nil {
		return false, 0, 0, fmt.Errorf("bptree: %w", err)
	}

	if isLeaf(pg.Data) {
		pg.Lock()
		split, promotedKey, newPageNo, err = t.insertIntoLeaf(pageNo, asLeaf(pg.Data), key, rid)
		pg.Unlock()
		if uerr := t.pool.UnpinPage(pageNo, true); uerr != nil && err == nil {
			err = uerr
		}
		if err != nil {
			return false, 0, 0, err
		}
		if split {
			if uerr := t.pool.UnpinPage(newPageNo, true); uerr != nil {
				return false, 0, 0, uerr
			}
		}
		return split, promotedKey, newPageNo, nil
	}

	pg.RLock()
	childIdx := childIndex(asInternal(pg.Data), key)
	childPageNo := asInternal(pg.Data).child(childIdx)
	pg.RUnlock()
	if uerr := t.pool.UnpinPage(pageNo, true); uerr != nil {
		return false, 0, 0, uerr
	}

	childSplit, childPromoted, childNewPageNo, err := t.insertRecursive(childPageNo, key, rid)
	if err != nil {
		return false, 0, 0, err
	}
	if !childSplit {
		return false, 0, 0, nil
	}

	pg, err = t.pool.FetchPage(pageNo)
	if err != nil {
		return false, 0, 0, fmt.Errorf("bptree: %w", err)
	}

	pg.Lock()
	split, promotedKey, newPageNo, err = t.insertIntoInternal(pageNo, asInternal(pg.Data), childPromoted, childNewPageNo)
	pg.Unlock()
	if uerr := t.pool.UnpinPage(pageNo, true); uerr != nil && err == nil {
		err = uerr
	}
	if err != nil {
		return false, 0, 0, err
	}
	if split {
		if uerr := t.pool.UnpinPage(newPageNo, true); uerr != nil {
			return false, 0, 0, uerr
		}
	}
	return split, promotedKey, newPageNo, nil
}

// growRoot allocates a new root above the old one after it split, wiring
// the promoted key and both children, and reports the new root page number
// through onRootChange.
func (t *Tree) growRoot(promotedKey int32, newChildPageNo int64) error {
	oldRoot, err := t.pool.FetchPage(t.root)
	if err != nil {
		return fmt.Errorf("bptree: %w", err)
	}
	oldRootWasLeaf := isLeaf(oldRoot.Data)
	oldRootLevel := int32(0)
	if !oldRootWasLeaf {
		oldRootLevel = asInternal(oldRoot.Data).level()
	}
	if err := t.pool.UnpinPage(t.root, false); err != nil {
		return fmt.Errorf("bptree: %w", err)
	}

	// New root's level only distinguishes it from a leaf; see node.go's
	// leafSentinel comment on why its numeric value is not otherwise relied
	// upon beyond 2-level trees.
	newLevel := int32(1)
	if !oldRootWasLeaf {
		newLevel = oldRootLevel
	}

	newRootPageNo, view, err := t.allocInternal(newLevel)
	if err != nil {
		return err
	}
	view.setChild(0, t.root)
	view.setKey(0, promotedKey)
	view.setChild(1, newChildPageNo)

	if err := t.pool.UnpinPage(newRootPageNo, true); err != nil {
		return fmt.Errorf("bptree: %w", err)
	}

	return t.setRoot(newRootPageNo)
}
