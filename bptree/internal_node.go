package bptree

// insertIntoInternal places (key, childPageNo) into the internal node in
// sorted order, where childPageNo becomes the child immediately to the
// right of key. If the node has room, splitPromoted is false. If the node
// was full, it allocates a sibling internal node with the same level,
// redistributes entries, and returns the promoted key (removed from both
// resulting nodes) and the new node's page number.
//
// Caller holds nodePageNo pinned and unpins it after this returns (and the
// new node if split, dirty in both cases).
func (t *Tree) insertIntoInternal(nodePageNo int64, v internalView, key int32, childPageNo int64) (splitPromoted bool, promotedKey int32, newNodePageNo int64, err error) {
	n := v.numKeys()

	if !v.full() {
		insertAt := n
		for i := 0; i < n; i++ {
			if v.key(i) > key {
				insertAt = i
				break
			}
		}
		for i := n; i > insertAt; i-- {
			v.setKey(i, v.key(i-1))
			v.setChild(i+1, v.child(i))
		}
		v.setKey(insertAt, key)
		v.setChild(insertAt+1, childPageNo)
		return false, 0, 0, nil
	}

	tmpKeys := make([]int32, 0, InternalCapacity+1)
	tmpChildren := make([]int64, 0, InternalCapacity+2)
	tmpChildren = append(tmpChildren, v.child(0))

	inserted := false
	for i := 0; i < InternalCapacity; i++ {
		k := v.key(i)
		if !inserted && key <= k {
			tmpKeys = append(tmpKeys, key)
			tmpChildren = append(tmpChildren, childPageNo)
			inserted = true
		}
		tmpKeys = append(tmpKeys, k)
		tmpChildren = append(tmpChildren, v.child(i+1))
	}
	if !inserted {
		tmpKeys = append(tmpKeys, key)
		tmpChildren = append(tmpChildren, childPageNo)
	}

	mid := InternalCapacity / 2
	promoted := tmpKeys[mid]

	newPageNo, newView, err := t.allocInternal(v.level())
	if err != nil {
		return false, 0, 0, err
	}

	for i := 0; i < mid; i++ {
		v.setKey(i, tmpKeys[i])
	}
	for i := 0; i <= mid; i++ {
		v.setChild(i, tmpChildren[i])
	}
	for i := mid; i < InternalCapacity; i++ {
		v.clearSlot(i)
	}

	newView.setChild(0, tmpChildren[mid+1])
	for i := mid + 1; i < len(tmpKeys); i++ {
		newView.setKey(i-mid-1, tmpKeys[i])
		newView.setChild(i-mid, tmpChildren[i+1])
	}

	return true, promoted, newPageNo, nil
}
