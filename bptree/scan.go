package bptree

import (
	"fmt"

	"bptreeindex/bpterrors"
	"bptreeindex/types"
)

// scanState holds the single active scan's position. At most one scan may
// be active at a time; its leaf stays pinned between StartScan/ScanNext
// calls, the sole exception to "no page stays pinned across operations".
//
// exhausted marks a scan that has yielded its last in-range record (or hit
// the high bound) but has not yet been torn down via EndScan: active stays
// true so EndScan remains callable exactly once more (matching the
// idempotence contract that a second EndScan raises ScanNotInitialized),
// while ScanNext on an exhausted scan raises IndexScanCompleted again
// without touching the already-unpinned leaf.
type scanState struct {
	active    bool
	exhausted bool
	low       int32
	high      int32
	lowOp     types.Operator
	highOp    types.Operator
	pageNo    int64
	nextIdx   int
}

func lowSatisfied(key, low int32, op types.Operator) bool {
	if op == types.GT {
		return key > low
	}
	return key >= low
}

func highExceeded(key, high int32, op types.Operator) bool {
	if op == types.LT {
		return key >= high
	}
	return key > high
}

// StartScan positions the tree at the first key satisfying [low, lowOp) and
// (high, highOp], pinning that key's leaf until EndScan or scan exhaustion.
func (t *Tree) StartScan(low int32, lowOp types.Operator, high int32, highOp types.Operator) error {
	if lowOp != types.GT && lowOp != types.GTE {
		return bpterrors.ErrBadOpcodes
	}
	if highOp != types.LT && highOp != types.LTE {
		return bpterrors.ErrBadOpcodes
	}
	if low > high {
		return bpterrors.ErrBadScanRange
	}

	if t.scan != nil && t.scan.active {
		if err := t.EndScan(); err != nil {
			return err
		}
	}

	pageNo, err := t.descendToLeaf(low)
	if err != nil {
		return err
	}

	for {
		pg, ferr := t.pool.FetchPage(pageNo)
		if ferr != nil {
			return fmt.Errorf("bptree: %w", ferr)
		}
		pg.RLock()
		v := asLeaf(pg.Data)
		n := v.numOccupied()

		found := -1
		failed := false
		for i := 0; i < n; i++ {
			k := v.key(i)
			if lowSatisfied(k, low, lowOp) {
				if highExceeded(k, high, highOp) {
					failed = true
				} else {
					found = i
				}
				break
			}
			if highExceeded(k, high, highOp) {
				failed = true
				break
			}
		}
		sib := v.rightSib()
		pg.RUnlock()

		if found >= 0 {
			t.scan = &scanState{
				active: true, low: low, high: high, lowOp: lowOp, highOp: highOp,
				pageNo: pageNo, nextIdx: found,
			}
			return nil
		}
		if failed {
			t.pool.UnpinPage(pageNo, false)
			return bpterrors.ErrNoSuchKeyFound
		}
		t.pool.UnpinPage(pageNo, false)
		if sib == 0 {
			return bpterrors.ErrNoSuchKeyFound
		}
		pageNo = sib
	}
}

// descendToLeaf walks from the root to the leaf that should contain key,
// using the same child_index rule as insertion.
func (t *Tree) descendToLeaf(key int32) (int64, error) {
	pageNo := t.root
	for {
		pg, err := t.pool.FetchPage(pageNo)
		if err != nil {
			return 0, fmt.Errorf("bptree: %w", err)
		}
		if isLeaf(pg.Data) {
			t.pool.UnpinPage(pageNo, false)
			return pageNo, nil
		}
		pg.RLock()
		idx := childIndex(asInternal(pg.Data), key)
		child := asInternal(pg.Data).child(idx)
		pg.RUnlock()
		t.pool.UnpinPage(pageNo, false)
		pageNo = child
	}
}

// ScanNext yields the next in-range record. It raises ErrScanNotInitialized
// if no scan is active, ErrIndexScanCompleted once the scan has already
// yielded its last in-range record (on this or a prior call), and never
// yields a record whose key violates the high bound.
func (t *Tree) ScanNext() (types.RecordId, error) {
	if t.scan == nil || !t.scan.active {
		return types.RecordId{}, bpterrors.ErrScanNotInitialized
	}
	st := t.scan
	if st.exhausted {
		return types.RecordId{}, bpterrors.ErrIndexScanCompleted
	}

	pg, err := t.pool.FetchPage(st.pageNo)
	if err != nil {
		return types.RecordId{}, fmt.Errorf("bptree: %w", err)
	}
	// FetchPage re-pins on top of the scan's held pin; drop the extra
	// reference once this call is done positioning, leaving exactly the
	// scan's own pin outstanding (or none, if the scan just exhausted).
	releasedExtra := false
	releaseExtra := func() {
		if !releasedExtra {
			t.pool.UnpinPage(st.pageNo, false)
			releasedExtra = true
		}
	}
	defer releaseExtra()

	pg.RLock()
	v := asLeaf(pg.Data)
	key := v.key(st.nextIdx)
	rid := v.rid(st.nextIdx)
	pg.RUnlock()

	if highExceeded(key, st.high, st.highOp) {
		releaseExtra()
		t.pool.UnpinPage(st.pageNo, false) // release the scan's own held pin
		st.exhausted = true
		return types.RecordId{}, bpterrors.ErrIndexScanCompleted
	}

	pg.RLock()
	nextIdx := st.nextIdx + 1
	n := v.numOccupied()
	sib := v.rightSib()
	pg.RUnlock()

	if nextIdx >= n {
		if sib == 0 {
			releaseExtra()
			t.pool.UnpinPage(st.pageNo, false) // release the scan's own held pin
			st.exhausted = true
			return rid, nil
		}
		releaseExtra()
		t.pool.UnpinPage(st.pageNo, false) // release the scan's own held pin on the old leaf
		st.pageNo = sib
		st.nextIdx = 0
		if _, err := t.pool.FetchPage(st.pageNo); err != nil {
			return types.RecordId{}, fmt.Errorf("bptree: %w", err)
		}
		return rid, nil
	}

	st.nextIdx = nextIdx
	return rid, nil
}

// EndScan releases the currently pinned scan leaf, if any active scan holds
// one, and deactivates the scan. Calling it with no scan active raises
// ErrScanNotInitialized.
func (t *Tree) EndScan() error {
	if t.scan == nil || !t.scan.active {
		return bpterrors.ErrScanNotInitialized
	}
	if !t.scan.exhausted {
		t.pool.UnpinPage(t.scan.pageNo, false)
	}
	t.scan.active = false
	t.scan.exhausted = false
	t.scan.pageNo = 0
	t.scan.nextIdx = 0
	return nil
}
