package bptree

import "bptreeindex/types"

// insertIntoLeaf places (key, rid) into the leaf in sorted order. If the
// leaf has room, it returns splitPromoted=false. If the leaf was full, it
// allocates a sibling leaf, redistributes entries, splices it into the
// sibling chain, and returns the promoted key and the new leaf's page
// number.
//
// Caller holds leafPageNo pinned and unpins it after this returns (and the
// new leaf if split, dirty in both cases).
func (t *Tree) insertIntoLeaf(leafPageNo int64, v leafView, key int32, rid types.RecordId) (splitPromoted bool, promotedKey int32, newLeafPageNo int64, err error) {
	n := v.numOccupied()

	if n < LeafCapacity {
		insertAt := n
		for i := 0; i < n; i++ {
			if v.key(i) > key {
				insertAt = i
				break
			}
		}
		for i := n; i > insertAt; i-- {
			v.setEntry(i, v.key(i-1), v.rid(i-1))
		}
		v.setEntry(insertAt, key, rid)
		return false, 0, 0, nil
	}

	type entry struct {
		key int32
		rid types.RecordId
	}
	tmp := make([]entry, 0, LeafCapacity+1)
	inserted := false
	for i := 0; i < LeafCapacity; i++ {
		k, r := v.key(i), v.rid(i)
		if !inserted && key <= k {
			tmp = append(tmp, entry{key, rid})
			inserted = true
		}
		tmp = append(tmp, entry{k, r})
	}
	if !inserted {
		tmp = append(tmp, entry{key, rid})
	}

	mid := LeafCapacity / 2

	newPageNo, newView, err := t.allocLeaf()
	if err != nil {
		return false, 0, 0, err
	}

	for i := 0; i < mid; i++ {
		v.setEntry(i, tmp[i].key, tmp[i].rid)
	}
	for i := mid; i < LeafCapacity; i++ {
		v.clearEntry(i)
	}

	for i := mid; i < len(tmp); i++ {
		newView.setEntry(i-mid, tmp[i].key, tmp[i].rid)
	}

	newView.setRightSib(v.rightSib())
	v.setRightSib(newPageNo)

	return true, tmp[mid].key, newPageNo, nil
}
