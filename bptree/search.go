package bptree

// childIndex returns the least i in [0, InternalCapacity] such that either
// pageNoArray[i+1] is null (0) or key <= keyArray[i]. Keys equal to a
// separator descend left, so insert and scan-positioning land on the same
// leaf for equal keys.
func childIndex(v internalView, key int32) int {
	n := v.numKeys()
	for i := 0; i < n; i++ {
		if key <= v.key(i) {
			return i
		}
	}
	return n
}
