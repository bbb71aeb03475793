package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ymakino/TsubameDB/catalog"
	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/storage/access"
	"github.com/ymakino/TsubameDB/storage/buffer"
	"github.com/ymakino/TsubameDB/storage/disk"
	"github.com/ymakino/TsubameDB/storage/page"
	"github.com/ymakino/TsubameDB/storage/table/column"
	"github.com/ymakino/TsubameDB/storage/table/schema"
	"github.com/ymakino/TsubameDB/types"
)

func newStackForTesting() (*access.StorageManager, *IndexManager) {
	diskManager := disk.NewVirtualDiskManagerImpl()
	catalog_ := catalog.NewCatalog()
	storageManager := access.NewStorageManager(catalog_, diskManager, buffer.NewBufferCache(diskManager, 8))
	indexManager := NewIndexManager(catalog_, storageManager)
	storageManager.SetIndexNotifier(indexManager)
	return storageManager, indexManager
}

func createStudents(t *testing.T, s *access.StorageManager) {
	t.Helper()
	_, err := s.CreateTable("students", schema.NewSchema([]*column.Column{
		column.NewColumn("id", types.Integer, 0),
		column.NewColumn("name", types.Varchar, 50),
		column.NewColumn("active", types.Boolean, 0),
	}), "students.db")
	require.NoError(t, err)
}

func student(id int32, name string, active bool) []types.Value {
	return []types.Value{types.NewInteger(id), types.NewVarchar(name), types.NewBoolean(active)}
}

func TestIndexLookupWithDuplicates(t *testing.T) {
	s, im := newStackForTesting()
	createStudents(t, s)

	_, err := s.Insert("students", student(1, "Alice", true))
	require.NoError(t, err)
	ridBob, err := s.Insert("students", student(2, "Bob", false))
	require.NoError(t, err)
	_, err = s.Insert("students", student(2, "Bobby", true))
	require.NoError(t, err)

	// bulk build over existing rows
	require.NoError(t, im.CreateIndex("id_idx", "students", "id", "id_idx.idx"))

	records, err := im.Lookup("id_idx", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Bob", records[0][1].ToVarchar())
	require.Equal(t, "Bobby", records[1][1].ToVarchar())

	deleted, err := s.Delete("students", *ridBob)
	require.NoError(t, err)
	require.True(t, deleted)

	records, err = im.Lookup("id_idx", 2)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Bobby", records[0][1].ToVarchar())
}

func TestIndexMaintainedOnInsert(t *testing.T) {
	s, im := newStackForTesting()
	createStudents(t, s)
	require.NoError(t, im.CreateIndex("id_idx", "students", "id", "id_idx.idx"))

	rid, err := s.Insert("students", student(42, "Zoe", true))
	require.NoError(t, err)

	rids, err := im.SearchRids("id_idx", 42)
	require.NoError(t, err)
	require.Equal(t, []page.RID{*rid}, rids)
}

func TestIndexRangeLookup(t *testing.T) {
	s, im := newStackForTesting()
	createStudents(t, s)
	require.NoError(t, im.CreateIndex("id_idx", "students", "id", "id_idx.idx"))

	for i := int32(0); i < 50; i++ {
		_, err := s.Insert("students", student(i, "s", true))
		require.NoError(t, err)
	}

	records, err := im.RangeLookup("id_idx", 5, 12)
	require.NoError(t, err)
	require.Len(t, records, 8)
	for i, record := range records {
		require.EqualValues(t, 5+int32(i), record[0].ToInteger())
	}
}

func TestIndexCreateErrors(t *testing.T) {
	s, im := newStackForTesting()
	createStudents(t, s)

	err := im.CreateIndex("name_idx", "students", "name", "name_idx.idx")
	require.True(t, errors.Is(err, errors.ErrSchema))

	err = im.CreateIndex("missing_idx", "students", "missing", "missing_idx.idx")
	require.True(t, errors.Is(err, errors.ErrSchema))

	err = im.CreateIndex("t_idx", "missing", "id", "t_idx.idx")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, im.CreateIndex("id_idx", "students", "id", "id_idx.idx"))
	err = im.CreateIndex("id_idx", "students", "id", "id_idx.idx")
	require.True(t, errors.Is(err, errors.ErrSchema))

	_, err = im.SearchRids("missing", 1)
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestIndexConsistencyAfterMutations(t *testing.T) {
	s, im := newStackForTesting()
	createStudents(t, s)
	require.NoError(t, im.CreateIndex("id_idx", "students", "id", "id_idx.idx"))

	rids := make([]page.RID, 0, 20)
	for i := int32(0); i < 20; i++ {
		rid, err := s.Insert("students", student(i%5, "s", true))
		require.NoError(t, err)
		rids = append(rids, *rid)
	}
	for _, i := range []int{0, 7, 13} {
		deleted, err := s.Delete("students", rids[i])
		require.NoError(t, err)
		require.True(t, deleted)
	}

	// index enumeration equals the live heap contents
	live := make(map[page.RID]int32)
	err := s.Scan("students", func(rid page.RID, values []types.Value) error {
		live[rid] = values[0].ToInteger()
		return nil
	})
	require.NoError(t, err)

	indexed, err := im.RangeSearchRids("id_idx", 0, 4)
	require.NoError(t, err)
	require.Len(t, indexed, len(live))
	for _, rid := range indexed {
		_, ok := live[rid]
		require.True(t, ok)
	}
}
