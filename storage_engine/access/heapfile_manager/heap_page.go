package heapfile

import (
	"encoding/binary"
	"fmt"

	"bptreeindex/types"
)

// Slotted page layout. Records grow forward from a small header; the slot
// directory grows backward from the end of the page. Each slot is a 4-byte
// {offset uint16, length uint16} pair naming where its record lives.
//
//	bytes [0:2)   numSlots uint16
//	bytes [2:4)   freeStart uint16 — offset of the next unused record byte
//	bytes [4:...) record bytes, packed forward
//	...slot directory, packed backward from PageSize
const (
	heapOffNumSlots  = 0
	heapOffFreeStart = 2
	heapHeaderSize   = 4
	slotSize         = 4
)

// initHeapPage zero-fills a freshly allocated page into an empty heap page.
func initHeapPage(data []byte) {
	for i := range data {
		data[i] = 0
	}
	binary.LittleEndian.PutUint16(data[heapOffFreeStart:], heapHeaderSize)
}

func heapNumSlots(data []byte) uint16 {
	return binary.LittleEndian.Uint16(data[heapOffNumSlots:])
}

func heapFreeStart(data []byte) uint16 {
	return binary.LittleEndian.Uint16(data[heapOffFreeStart:])
}

func slotOffset(idx uint16) int {
	return types.PageSize - int(idx+1)*slotSize
}

func readSlot(data []byte, idx uint16) (offset, length uint16) {
	at := slotOffset(idx)
	return binary.LittleEndian.Uint16(data[at:]), binary.LittleEndian.Uint16(data[at+2:])
}

func writeSlot(data []byte, idx uint16, offset, length uint16) {
	at := slotOffset(idx)
	binary.LittleEndian.PutUint16(data[at:], offset)
	binary.LittleEndian.PutUint16(data[at+2:], length)
}

// heapFreeSpace reports how many bytes remain available for a new record
// plus its slot entry.
func heapFreeSpace(data []byte) int {
	numSlots := heapNumSlots(data)
	freeStart := int(heapFreeStart(data))
	slotDirStart := types.PageSize - int(numSlots)*slotSize
	return slotDirStart - freeStart
}

// heapInsert appends row to the page, returning its slot index. Callers must
// have already checked heapFreeSpace(data) >= len(row)+slotSize.
func heapInsert(data []byte, row []byte) (uint16, error) {
	if heapFreeSpace(data) < len(row)+slotSize {
		return 0, fmt.Errorf("heapfile: page has no room for a %d-byte row", len(row))
	}

	freeStart := heapFreeStart(data)
	copy(data[freeStart:], row)

	numSlots := heapNumSlots(data)
	writeSlot(data, numSlots, freeStart, uint16(len(row)))

	binary.LittleEndian.PutUint16(data[heapOffFreeStart:], freeStart+uint16(len(row)))
	binary.LittleEndian.PutUint16(data[heapOffNumSlots:], numSlots+1)
	return numSlots, nil
}

// heapRead returns the row stored at slot idx.
func heapRead(data []byte, idx uint16) ([]byte, error) {
	if idx >= heapNumSlots(data) {
		return nil, fmt.Errorf("heapfile: slot %d out of range", idx)
	}
	offset, length := readSlot(data, idx)
	row := make([]byte, length)
	copy(row, data[offset:int(offset)+int(length)])
	return row, nil
}
