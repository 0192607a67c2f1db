package heapfile

import "bptreeindex/types"

// Next advances the scanner and returns the next row and its RecordId. ok is
// false once every page has been exhausted.
func (sc *Scanner) Next() (rid types.RecordId, row []byte, ok bool, err error) {
	for sc.pageNo <= sc.numPages {
		pg, ferr := sc.hf.pool.FetchPage(sc.pageNo)
		if ferr != nil {
			return types.RecordId{}, nil, false, ferr
		}

		pg.RLock()
		numSlots := heapNumSlots(pg.Data)
		if sc.slotIdx >= numSlots {
			pg.RUnlock()
			sc.hf.pool.UnpinPage(sc.pageNo, false)
			sc.pageNo++
			sc.slotIdx = 0
			continue
		}

		row, err = heapRead(pg.Data, sc.slotIdx)
		pg.RUnlock()
		sc.hf.pool.UnpinPage(sc.pageNo, false)
		if err != nil {
			return types.RecordId{}, nil, false, err
		}

		rid = types.RecordId{PageNumber: sc.pageNo, SlotNumber: int32(sc.slotIdx)}
		sc.slotIdx++
		return rid, row, true, nil
	}
	return types.RecordId{}, nil, false, nil
}
