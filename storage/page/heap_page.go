package page

import (
	"encoding/binary"

	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/types"
)

/**
 * Slotted page format:
 *  ---------------------------------------------------------
 *  | HEADER | RECORDS ... FREE SPACE ... | SLOT DIRECTORY |
 *  ---------------------------------------------------------
 *                                        ^
 *                                        grows backward
 *
 * Header (8 bytes):
 *  -----------------------------------------------------
 *  | FreeSpacePointer (4) | SlotCount (2) | Reserved (2) |
 *  -----------------------------------------------------
 *
 * Slot directory entry (4 bytes each, entry i ends at PageSize-i*4):
 *  ---------------------------------
 *  | RecordOffset (2) | RecordLength (2) |
 *  ---------------------------------
 * A record offset of -1 marks a tombstoned slot.
 */

const (
	offsetFreeSpace = 0
	offsetSlotCount = 4
)

// HeapPage interprets a page-sized byte buffer as a slotted record page.
type HeapPage struct {
	pageId types.PageID
	data   *[common.PageSize]byte
}

// NewHeapPage wraps buf as a heap page. A buffer whose header fields are
// both zero is treated as fresh and gets its free space pointer
// initialized past the header.
func NewHeapPage(pageId types.PageID, buf *[common.PageSize]byte) *HeapPage {
	hp := &HeapPage{pageId, buf}
	if hp.GetFreeSpacePointer() == 0 && hp.GetSlotCount() == 0 {
		hp.setFreeSpacePointer(common.PageHeaderSize)
	}
	return hp
}

func (hp *HeapPage) GetPageId() types.PageID { return hp.pageId }

func (hp *HeapPage) Data() *[common.PageSize]byte { return hp.data }

func (hp *HeapPage) GetFreeSpacePointer() int32 {
	return int32(binary.BigEndian.Uint32(hp.data[offsetFreeSpace:]))
}

func (hp *HeapPage) setFreeSpacePointer(ptr int32) {
	binary.BigEndian.PutUint32(hp.data[offsetFreeSpace:], uint32(ptr))
}

func (hp *HeapPage) GetSlotCount() int16 {
	return int16(binary.BigEndian.Uint16(hp.data[offsetSlotCount:]))
}

func (hp *HeapPage) setSlotCount(count int16) {
	binary.BigEndian.PutUint16(hp.data[offsetSlotCount:], uint16(count))
}

// slotEntryPos returns the byte position of the slot directory entry
// for slotNum. Entry i occupies the 4 bytes ending at PageSize - i*4.
func (hp *HeapPage) slotEntryPos(slotNum int16) int32 {
	return int32(common.PageSize) - int32(slotNum+1)*common.SlotEntrySize
}

func (hp *HeapPage) getSlotOffset(slotNum int16) int16 {
	return int16(binary.BigEndian.Uint16(hp.data[hp.slotEntryPos(slotNum):]))
}

func (hp *HeapPage) getSlotLength(slotNum int16) int16 {
	return int16(binary.BigEndian.Uint16(hp.data[hp.slotEntryPos(slotNum)+2:]))
}

func (hp *HeapPage) setSlotEntry(slotNum int16, offset int16, length int16) {
	pos := hp.slotEntryPos(slotNum)
	binary.BigEndian.PutUint16(hp.data[pos:], uint16(offset))
	binary.BigEndian.PutUint16(hp.data[pos+2:], uint16(length))
}

// GetFreeSpaceRemaining is the gap between the record area and the
// slot directory.
func (hp *HeapPage) GetFreeSpaceRemaining() int32 {
	return hp.slotEntryPos(hp.GetSlotCount()-1) - hp.GetFreeSpacePointer()
}

// CanFit reports whether a record of recordLen bytes plus its new slot
// directory entry fits in the remaining free space.
func (hp *HeapPage) CanFit(recordLen int32) bool {
	return hp.GetFreeSpaceRemaining() >= recordLen+common.SlotEntrySize
}

// Insert copies record into the free region and appends a slot entry.
// The returned slot id is the slot count before the insert.
func (hp *HeapPage) Insert(record []byte) (uint32, error) {
	if !hp.CanFit(int32(len(record))) {
		return 0, errors.Wrapf(errors.ErrPageFull,
			"page %d: record of %d bytes", hp.pageId, len(record))
	}

	freePtr := hp.GetFreeSpacePointer()
	slotCount := hp.GetSlotCount()
	copy(hp.data[freePtr:], record)
	hp.setSlotEntry(slotCount, int16(freePtr), int16(len(record)))
	hp.setFreeSpacePointer(freePtr + int32(len(record)))
	hp.setSlotCount(slotCount + 1)
	common.SH_Assert(hp.GetFreeSpacePointer()+int32(hp.GetSlotCount())*common.SlotEntrySize <= common.PageSize,
		"heap page free pointer crossed slot directory")
	return uint32(slotCount), nil
}

// Read returns the record bytes stored at slotNum. Tombstoned and
// out-of-range slots yield ErrNotFound.
func (hp *HeapPage) Read(slotNum uint32) ([]byte, error) {
	if slotNum >= uint32(hp.GetSlotCount()) {
		return nil, errors.Wrapf(errors.ErrNotFound,
			"page %d: slot %d out of range", hp.pageId, slotNum)
	}
	offset := hp.getSlotOffset(int16(slotNum))
	if offset == common.TombstoneOffset {
		return nil, errors.Wrapf(errors.ErrNotFound,
			"page %d: slot %d is deleted", hp.pageId, slotNum)
	}
	length := hp.getSlotLength(int16(slotNum))
	record := make([]byte, length)
	copy(record, hp.data[offset:int32(offset)+int32(length)])
	return record, nil
}

// Delete tombstones slotNum. Out-of-range slot ids are ignored and the
// record bytes stay in place until the page is rewritten.
func (hp *HeapPage) Delete(slotNum uint32) {
	if slotNum >= uint32(hp.GetSlotCount()) {
		return
	}
	hp.setSlotEntry(int16(slotNum), common.TombstoneOffset, 0)
}

// LiveSlotIds returns the ids of non-tombstoned slots in ascending
// order, which is the insertion order within the page.
func (hp *HeapPage) LiveSlotIds() []uint32 {
	slotCount := hp.GetSlotCount()
	live := make([]uint32, 0, slotCount)
	for i := int16(0); i < slotCount; i++ {
		if hp.getSlotOffset(i) != common.TombstoneOffset && hp.getSlotLength(i) > 0 {
			live = append(live, uint32(i))
		}
	}
	return live
}
