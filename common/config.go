package common

import "math"

// InvalidColIndex is the sentinel Schema.GetColIndex returns for an
// unknown column name.
const InvalidColIndex = uint32(math.MaxUint32)

const (
	// size of a heap page in bytes
	PageSize = 4096
	// heap page header: free-space pointer (4) + slot count (2) + reserved (2)
	PageHeaderSize = 8
	// slot directory entry: record offset (2) + record length (2)
	SlotEntrySize = 4
	// slot offset value marking a tombstoned record
	TombstoneOffset = -1
	// largest serialized record a slot can describe
	MaxRecordSize = 65535
	// invalid page id
	InvalidPageID = -1
	// default order of in-memory B+ tree indexes
	DefaultBTreeOrder = 4
	// default buffer cache capacity in pages
	DefaultPoolSize = 64
)

var EnableDebug bool = false

// BTreeOrder is the order new in-memory B+ tree indexes are built
// with. Must stay >= 3.
var BTreeOrder = DefaultBTreeOrder
