package btree

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ymakino/TsubameDB/storage/page"
	"github.com/ymakino/TsubameDB/types"
)

func rid(pid int32, slot uint32) page.RID {
	return page.RID{PageId: types.PageID(pid), SlotNum: slot}
}

func TestBPlusTreeSearchEmpty(t *testing.T) {
	tree := NewBPlusTree(4)
	require.Empty(t, tree.Search(10))
	require.Empty(t, tree.RangeSearch(0, 100))
}

func TestBPlusTreeInsertSearch(t *testing.T) {
	tree := NewBPlusTree(4)
	for i := int32(0); i < 100; i++ {
		tree.Insert(i, rid(i/10, uint32(i%10)))
	}
	for i := int32(0); i < 100; i++ {
		rids := tree.Search(i)
		require.Len(t, rids, 1, "key %d", i)
		require.Equal(t, rid(i/10, uint32(i%10)), rids[0])
	}
	require.Empty(t, tree.Search(100))
	require.Empty(t, tree.Search(-1))
}

func TestBPlusTreeDuplicateKeysPreserveInsertionOrder(t *testing.T) {
	tree := NewBPlusTree(4)
	tree.Insert(5, rid(0, 0))
	tree.Insert(5, rid(0, 1))
	tree.Insert(5, rid(1, 0))
	tree.Insert(3, rid(2, 2))

	rids := tree.Search(5)
	require.Equal(t, []page.RID{rid(0, 0), rid(0, 1), rid(1, 0)}, rids)
}

func TestBPlusTreeRangeSearch(t *testing.T) {
	tree := NewBPlusTree(4)
	// descending inserts still come back in ascending key order
	for i := int32(49); i >= 0; i-- {
		tree.Insert(i, rid(i, 0))
	}

	rids := tree.RangeSearch(5, 12)
	require.Len(t, rids, 8)
	for i, r := range rids {
		require.Equal(t, types.PageID(5+int32(i)), r.PageId)
	}

	require.Empty(t, tree.RangeSearch(1, 0))
	require.Len(t, tree.RangeSearch(math.MinInt32, math.MaxInt32), 50)
	require.Len(t, tree.RangeSearch(49, 200), 1)
}

func TestBPlusTreeDeleteOne(t *testing.T) {
	tree := NewBPlusTree(4)
	tree.Insert(7, rid(0, 0))
	tree.Insert(7, rid(0, 1))
	tree.Insert(8, rid(0, 2))

	require.True(t, tree.Delete(7, rid(0, 0)))
	require.Equal(t, []page.RID{rid(0, 1)}, tree.Search(7))

	// identity matters, the remaining entry does not match (0,0)
	require.False(t, tree.Delete(7, rid(0, 0)))
	require.False(t, tree.Delete(99, rid(0, 0)))

	require.True(t, tree.Delete(7, rid(0, 1)))
	require.Empty(t, tree.Search(7))
	require.Equal(t, []page.RID{rid(0, 2)}, tree.Search(8))

	// range search over the emptied key
	require.Equal(t, []page.RID{rid(0, 2)}, tree.RangeSearch(0, 100))
}

func TestBPlusTreeAgainstReference(t *testing.T) {
	for _, order := range []int{3, 4, 5, 8} {
		tree := NewBPlusTree(order)
		reference := make(map[int32][]page.RID)
		rng := rand.New(rand.NewSource(42))

		for i := 0; i < 2000; i++ {
			key := int32(rng.Intn(200))
			r := rid(int32(i/100), uint32(i%100))
			tree.Insert(key, r)
			reference[key] = append(reference[key], r)
		}
		for i := 0; i < 500; i++ {
			key := int32(rng.Intn(200))
			entries := reference[key]
			if len(entries) == 0 {
				require.False(t, tree.Delete(key, rid(0, 0)))
				continue
			}
			victim := entries[rng.Intn(len(entries))]
			require.True(t, tree.Delete(key, victim))
			for j, e := range entries {
				if e == victim {
					reference[key] = append(entries[:j:j], entries[j+1:]...)
					break
				}
			}
		}

		keys := make([]int32, 0, len(reference))
		for key := range reference {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

		expected := make([]page.RID, 0)
		for _, key := range keys {
			if len(reference[key]) == 0 {
				require.Empty(t, tree.Search(key), "order %d key %d", order, key)
				continue
			}
			require.Equal(t, reference[key], tree.Search(key), "order %d key %d", order, key)
			expected = append(expected, reference[key]...)
		}
		require.Equal(t, expected, tree.RangeSearch(math.MinInt32, math.MaxInt32), "order %d", order)
	}
}
