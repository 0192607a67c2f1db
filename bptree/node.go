// Package bptree implements the disk-backed B+Tree engine: page-node
// layout, recursive split-propagating insertion, root promotion, leaf
// chaining, and the bounded range-scan state machine. All page access goes
// through a bufferpool.BufferPool; the relation scanner used for bulk-load
// (heapfile.Scanner) is driven by the index package, not by this one.
package bptree

import (
	"encoding/binary"

	"bptreeindex/types"
)

// leafSentinel is the level value that marks a page as a leaf. Internal
// nodes always carry level >= 0; level is otherwise only a leaf/internal
// discriminator; its numeric value on internal nodes is not meaningful
// beyond that, per the root-promotion behavior in growRoot.
const leafSentinel = int32(-1)

// Leaf node layout (4096-byte page):
//
//	[0:4)    level int32, always leafSentinel
//	[4:12)   rightSibPageNo int64
//	[12:...) LeafCapacity slots of {key int32, RecordId{PageNumber int64, SlotNumber int32}}
const (
	leafOffLevel    = 0
	leafOffSib      = 4
	leafHeaderSize  = 12
	leafSlotSize    = 16 // key(4) + PageNumber(8) + SlotNumber(4)
	LeafCapacity    = (types.PageSize - leafHeaderSize) / leafSlotSize
	leafOffSlots    = leafHeaderSize
)

// Internal node layout (4096-byte page):
//
//	[0:4)    level int32, >= 0
//	[4:12)   pageNoArray[0] int64 — leftmost child
//	[12:...) InternalCapacity slots of {key int32, childPageNo int64}
const (
	internalOffLevel    = 0
	internalOffLeftmost = 4
	internalHeaderSize  = 12
	internalSlotSize    = 12 // key(4) + childPageNo(8)
	InternalCapacity    = (types.PageSize - internalHeaderSize) / internalSlotSize
	internalOffSlots    = internalHeaderSize
)

// isLeaf reports whether data's level field is the leaf sentinel.
func isLeaf(data []byte) bool {
	return int32(binary.LittleEndian.Uint32(data[0:])) == leafSentinel
}

// leafView is a mutable accessor over a leaf page's bytes.
type leafView struct{ data []byte }

func asLeaf(data []byte) leafView { return leafView{data: data} }

func initLeaf(data []byte) {
	for i := range data {
		data[i] = 0
	}
	sentinel := leafSentinel
	binary.LittleEndian.PutUint32(data[leafOffLevel:], uint32(sentinel))
	binary.LittleEndian.PutUint64(data[leafOffSib:], 0)
}

func (v leafView) rightSib() int64 {
	return int64(binary.LittleEndian.Uint64(v.data[leafOffSib:]))
}

func (v leafView) setRightSib(pageNo int64) {
	binary.LittleEndian.PutUint64(v.data[leafOffSib:], uint64(pageNo))
}

func (v leafView) slotOffset(i int) int { return leafOffSlots + i*leafSlotSize }

func (v leafView) key(i int) int32 {
	return int32(binary.LittleEndian.Uint32(v.data[v.slotOffset(i):]))
}

func (v leafView) rid(i int) types.RecordId {
	at := v.slotOffset(i) + 4
	return types.RecordId{
		PageNumber: int64(binary.LittleEndian.Uint64(v.data[at:])),
		SlotNumber: int32(binary.LittleEndian.Uint32(v.data[at+8:])),
	}
}

func (v leafView) setEntry(i int, key int32, rid types.RecordId) {
	at := v.slotOffset(i)
	binary.LittleEndian.PutUint32(v.data[at:], uint32(key))
	binary.LittleEndian.PutUint64(v.data[at+4:], uint64(rid.PageNumber))
	binary.LittleEndian.PutUint32(v.data[at+12:], uint32(rid.SlotNumber))
}

func (v leafView) clearEntry(i int) {
	at := v.slotOffset(i)
	for j := 0; j < leafSlotSize; j++ {
		v.data[at+j] = 0
	}
}

func (v leafView) occupied(i int) bool { return v.rid(i).PageNumber != 0 }

// numOccupied returns how many leading slots are occupied; entries are kept
// left-compacted (no deletion path exists to violate this).
func (v leafView) numOccupied() int {
	n := 0
	for n < LeafCapacity && v.occupied(n) {
		n++
	}
	return n
}

// internalView is a mutable accessor over an internal page's bytes.
type internalView struct{ data []byte }

func asInternal(data []byte) internalView { return internalView{data: data} }

func initInternal(data []byte, level int32) {
	for i := range data {
		data[i] = 0
	}
	binary.LittleEndian.PutUint32(data[internalOffLevel:], uint32(level))
	binary.LittleEndian.PutUint64(data[internalOffLeftmost:], 0)
}

func (v internalView) level() int32 {
	return int32(binary.LittleEndian.Uint32(v.data[internalOffLevel:]))
}

func (v internalView) setLevel(level int32) {
	binary.LittleEndian.PutUint32(v.data[internalOffLevel:], uint32(level))
}

func (v internalView) slotOffset(i int) int { return internalOffSlots + i*internalSlotSize }

func (v internalView) key(i int) int32 {
	return int32(binary.LittleEndian.Uint32(v.data[v.slotOffset(i):]))
}

func (v internalView) setKey(i int, key int32) {
	binary.LittleEndian.PutUint32(v.data[v.slotOffset(i):], uint32(key))
}

// child returns pageNoArray[i]: i==0 is the leftmost child, stored separately
// from the keyed slots; i>=1 maps to slot i-1's child field.
func (v internalView) child(i int) int64 {
	if i == 0 {
		return int64(binary.LittleEndian.Uint64(v.data[internalOffLeftmost:]))
	}
	at := v.slotOffset(i-1) + 4
	return int64(binary.LittleEndian.Uint64(v.data[at:]))
}

func (v internalView) setChild(i int, pageNo int64) {
	if i == 0 {
		binary.LittleEndian.PutUint64(v.data[internalOffLeftmost:], uint64(pageNo))
		return
	}
	at := v.slotOffset(i-1) + 4
	binary.LittleEndian.PutUint64(v.data[at:], uint64(pageNo))
}

func (v internalView) clearSlot(i int) {
	at := v.slotOffset(i)
	for j := 0; j < internalSlotSize; j++ {
		v.data[at+j] = 0
	}
}

// numKeys returns how many leading key slots are occupied, i.e. the number
// of non-null entries in pageNoArray[1:].
func (v internalView) numKeys() int {
	n := 0
	for n < InternalCapacity && v.child(n+1) != 0 {
		n++
	}
	return n
}

func (v internalView) full() bool { return v.child(InternalCapacity) != 0 }
