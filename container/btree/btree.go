package btree

import (
	"golang.org/x/exp/slices"

	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/storage/page"
)

// BPlusTree is an in-memory order-N B+ tree from int32 keys to ordered
// RID lists. Inserts split top-down before descending, deletes are lazy
// and never rebalance, so the tree can grow lopsided but search and
// range scans stay correct.
type BPlusTree struct {
	order          int // max children per internal node
	maxKeys        int // order - 1
	medianKeyIndex int // separator index promoted on internal splits
	root           *node
}

type node struct {
	isLeaf   bool
	keys     []int32
	children []*node      // internal nodes only
	values   [][]page.RID // leaf nodes only, parallel to keys
	next     *node        // leaf chain, left to right
}

func newNode(isLeaf bool) *node {
	return &node{isLeaf: isLeaf}
}

func NewBPlusTree(order int) *BPlusTree {
	common.SH_Assert(order >= 3, "B+ tree order must be >= 3")
	return &BPlusTree{
		order:          order,
		maxKeys:        order - 1,
		medianKeyIndex: (order - 1) / 2,
		root:           newNode(true),
	}
}

func (t *BPlusTree) GetOrder() int {
	return t.order
}

// lowerBound is the first index with keys[i] >= key.
func lowerBound(keys []int32, key int32) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if keys[mid] < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// upperBound is the first index with keys[i] > key. Routing with it
// sends equal keys to the right child.
func upperBound(keys []int32, key int32) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if keys[mid] <= key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Search returns a snapshot of the RID list stored under key, empty
// when the key is absent.
func (t *BPlusTree) Search(key int32) []page.RID {
	current := t.root
	for !current.isLeaf {
		current = current.children[upperBound(current.keys, key)]
	}
	pos := lowerBound(current.keys, key)
	if pos < len(current.keys) && current.keys[pos] == key {
		return slices.Clone(current.values[pos])
	}
	return []page.RID{}
}

// RangeSearch returns the RIDs of every key in [low, high], keys in
// ascending order, RIDs of equal keys in insertion order.
func (t *BPlusTree) RangeSearch(low int32, high int32) []page.RID {
	result := make([]page.RID, 0)
	if low > high {
		return result
	}
	leaf := t.findLeaf(low)
	pos := lowerBound(leaf.keys, low)
	for leaf != nil {
		for i := pos; i < len(leaf.keys); i++ {
			if leaf.keys[i] > high {
				return result
			}
			result = append(result, leaf.values[i]...)
		}
		leaf = leaf.next
		pos = 0
	}
	return result
}

// findLeaf descends to the leaf that would contain key.
func (t *BPlusTree) findLeaf(key int32) *node {
	current := t.root
	for !current.isLeaf {
		current = current.children[upperBound(current.keys, key)]
	}
	return current
}

// Insert adds (key, rid), appending to the key's list when the key is
// already present. A full root is split before descending.
func (t *BPlusTree) Insert(key int32, rid page.RID) {
	if len(t.root.keys) == t.maxKeys {
		newRoot := newNode(false)
		newRoot.children = append(newRoot.children, t.root)
		t.splitChild(newRoot, 0, t.root)
		t.root = newRoot
	}
	t.insertNonFull(t.root, key, rid)
}

func (t *BPlusTree) insertNonFull(node_ *node, key int32, rid page.RID) {
	if node_.isLeaf {
		leafInsert(node_, key, rid)
		return
	}
	pos := upperBound(node_.keys, key)
	if len(node_.children[pos].keys) == t.maxKeys {
		t.splitChild(node_, pos, node_.children[pos])
		if key >= node_.keys[pos] {
			pos++
		}
	}
	t.insertNonFull(node_.children[pos], key, rid)
}

func leafInsert(leaf *node, key int32, rid page.RID) {
	pos := lowerBound(leaf.keys, key)
	if pos < len(leaf.keys) && leaf.keys[pos] == key {
		leaf.values[pos] = append(leaf.values[pos], rid)
		return
	}
	leaf.keys = slices.Insert(leaf.keys, pos, key)
	leaf.values = slices.Insert(leaf.values, pos, []page.RID{rid})
}

func (t *BPlusTree) splitChild(parent *node, index int, child *node) {
	if child.isLeaf {
		t.splitLeafChild(parent, index, child)
	} else {
		t.splitInternalChild(parent, index, child)
	}
}

// splitLeafChild halves a full leaf, the left side keeping the larger
// half when the count is odd, and copies the right side's first key up
// into the parent as a routable separator.
func (t *BPlusTree) splitLeafChild(parent *node, index int, leaf *node) {
	keepLeft := (len(leaf.keys) + 1) / 2
	sibling := newNode(true)
	sibling.keys = append(sibling.keys, leaf.keys[keepLeft:]...)
	sibling.values = append(sibling.values, leaf.values[keepLeft:]...)

	sibling.next = leaf.next
	leaf.next = sibling

	leaf.keys = leaf.keys[:keepLeft]
	leaf.values = leaf.values[:keepLeft]

	parent.keys = slices.Insert(parent.keys, index, sibling.keys[0])
	parent.children = slices.Insert(parent.children, index+1, sibling)
}

// splitInternalChild promotes the median separator into the parent,
// leaving keys below it on the left and above it on the right.
func (t *BPlusTree) splitInternalChild(parent *node, index int, internal *node) {
	mid := t.medianKeyIndex
	medianKey := internal.keys[mid]

	sibling := newNode(false)
	sibling.keys = append(sibling.keys, internal.keys[mid+1:]...)
	sibling.children = append(sibling.children, internal.children[mid+1:]...)

	internal.keys = internal.keys[:mid]
	internal.children = internal.children[:mid+1]

	parent.keys = slices.Insert(parent.keys, index, medianKey)
	parent.children = slices.Insert(parent.children, index+1, sibling)
}

// Delete removes one (key, rid) pair, dropping the key once its list
// empties. Separators above are left untouched.
func (t *BPlusTree) Delete(key int32, rid page.RID) bool {
	leaf := t.findLeaf(key)
	pos := lowerBound(leaf.keys, key)
	if pos >= len(leaf.keys) || leaf.keys[pos] != key {
		return false
	}
	ridPos := slices.Index(leaf.values[pos], rid)
	if ridPos < 0 {
		return false
	}
	leaf.values[pos] = slices.Delete(leaf.values[pos], ridPos, ridPos+1)
	if len(leaf.values[pos]) == 0 {
		leaf.keys = slices.Delete(leaf.keys, pos, pos+1)
		leaf.values = slices.Delete(leaf.values, pos, pos+1)
	}
	return true
}
