package access

import (
	"os"
	"path/filepath"

	"github.com/ymakino/TsubameDB/catalog"
	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/storage/buffer"
	"github.com/ymakino/TsubameDB/storage/disk"
	"github.com/ymakino/TsubameDB/storage/page"
	"github.com/ymakino/TsubameDB/storage/table/schema"
	"github.com/ymakino/TsubameDB/storage/tuple"
	"github.com/ymakino/TsubameDB/types"
)

// IndexNotifier receives heap mutations so secondary indexes can stay
// consistent. The storage manager is constructed first, the notifier
// installed after.
type IndexNotifier interface {
	OnInsert(tableName string, rid page.RID, values []types.Value)
	OnDelete(tableName string, rid page.RID, values []types.Value)
}

// StorageManager owns heap file creation and the page-level record I/O
// protocol. All page reads go through the buffer cache, all page writes
// go through the disk manager followed by cache invalidation.
type StorageManager struct {
	catalog_      *catalog.Catalog
	diskManager   disk.DiskManager
	bufferCache   *buffer.BufferCache
	indexNotifier IndexNotifier
}

func NewStorageManager(catalog_ *catalog.Catalog, diskManager disk.DiskManager, bufferCache *buffer.BufferCache) *StorageManager {
	return &StorageManager{catalog_, diskManager, bufferCache, nil}
}

func (s *StorageManager) SetIndexNotifier(indexNotifier IndexNotifier) {
	s.indexNotifier = indexNotifier
}

func (s *StorageManager) Catalog() *catalog.Catalog {
	return s.catalog_
}

// CreateTable registers the schema and allocates an empty heap file,
// creating intermediate directories of the file path.
func (s *StorageManager) CreateTable(name string, schema_ *schema.Schema, filePath string) (*catalog.TableMetadata, error) {
	tableMetadata, err := s.catalog_.RegisterTable(name, schema_, filePath)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(errors.ErrIO, "mkdir %s: %v", dir, err)
		}
	}
	if err := s.diskManager.CreateFile(filePath); err != nil {
		return nil, err
	}
	return tableMetadata, nil
}

// CreateMarkerFile allocates an empty file, used for index markers
// that carry no pages.
func (s *StorageManager) CreateMarkerFile(filePath string) error {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(errors.ErrIO, "mkdir %s: %v", dir, err)
		}
	}
	return s.diskManager.CreateFile(filePath)
}

func (s *StorageManager) validate(schema_ *schema.Schema, values []types.Value) error {
	if uint32(len(values)) != schema_.GetColumnCount() {
		return errors.Wrapf(errors.ErrValue,
			"got %d values for %d columns", len(values), schema_.GetColumnCount())
	}
	for i := uint32(0); i < schema_.GetColumnCount(); i++ {
		col := schema_.GetColumn(i)
		if values[i].ValueType() != col.GetType() {
			return errors.Wrapf(errors.ErrSchema,
				"column %s expects %v, got %v", col.GetColumnName(), col.GetType(), values[i].ValueType())
		}
		if col.GetType() == types.Varchar && col.Length() > 0 {
			if uint32(len(values[i].ToVarchar())) > col.Length() {
				return errors.Wrapf(errors.ErrValue,
					"column %s: %d bytes exceeds VARCHAR(%d)", col.GetColumnName(), len(values[i].ToVarchar()), col.Length())
			}
		}
	}
	return nil
}

// targetPageID picks the page an insert should try first: page 0 for an
// empty file, otherwise the last aligned page. A file whose length is
// not a page multiple ends in a partial page, which is the target.
func targetPageID(fileLen int64) types.PageID {
	if fileLen == 0 {
		return 0
	}
	if fileLen%int64(common.PageSize) == 0 {
		return types.PageID(fileLen/int64(common.PageSize) - 1)
	}
	return types.PageID(fileLen / int64(common.PageSize))
}

// Insert validates, serializes and places one record, maintaining any
// installed index. The returned RID is stable for the record's lifetime.
func (s *StorageManager) Insert(tableName string, values []types.Value) (*page.RID, error) {
	tableMetadata, err := s.catalog_.GetTableByName(tableName)
	if err != nil {
		return nil, err
	}
	if err := s.validate(tableMetadata.Schema(), values); err != nil {
		return nil, err
	}

	tuple_ := tuple.NewTupleFromValues(values, tableMetadata.Schema())
	if tuple_.Size() > common.MaxRecordSize {
		return nil, errors.Wrapf(errors.ErrValue,
			"record of %d bytes exceeds the %d byte slot limit", tuple_.Size(), common.MaxRecordSize)
	}

	filePath := tableMetadata.FilePath()
	fileLen, err := s.diskManager.FileSize(filePath)
	if err != nil {
		return nil, err
	}

	pageID := targetPageID(fileLen)
	buf, err := s.bufferCache.GetPage(filePath, pageID)
	if err != nil {
		return nil, err
	}
	heapPage := page.NewHeapPage(pageID, buf)

	slotNum, err := heapPage.Insert(tuple_.Data())
	if errors.Is(err, errors.ErrPageFull) {
		pageID = pageID + 1
		buf = new([common.PageSize]byte)
		heapPage = page.NewHeapPage(pageID, buf)
		slotNum, err = heapPage.Insert(tuple_.Data())
	}
	if err != nil {
		return nil, err
	}

	if err := s.diskManager.WritePage(filePath, pageID, heapPage.Data()[:]); err != nil {
		return nil, err
	}
	s.bufferCache.Invalidate(filePath, pageID)

	rid := page.NewRID(pageID, slotNum)
	if s.indexNotifier != nil {
		s.indexNotifier.OnInsert(tableName, *rid, values)
	}
	return rid, nil
}

// Read deserializes the record at rid. Tombstoned and out-of-range
// slots come back as ErrNotFound.
func (s *StorageManager) Read(tableName string, rid page.RID) ([]types.Value, error) {
	tableMetadata, err := s.catalog_.GetTableByName(tableName)
	if err != nil {
		return nil, err
	}
	heapPage, err := s.FetchHeapPage(tableName, rid.GetPageId())
	if err != nil {
		return nil, err
	}
	record, err := heapPage.Read(rid.GetSlotNum())
	if err != nil {
		return nil, err
	}
	return tuple.NewTuple(&rid, record).GetValues(tableMetadata.Schema())
}

// Delete tombstones the record at rid. A miss on an absent or already
// tombstoned slot is not an error, the return value reports whether a
// live record went away.
func (s *StorageManager) Delete(tableName string, rid page.RID) (bool, error) {
	tableMetadata, err := s.catalog_.GetTableByName(tableName)
	if err != nil {
		return false, err
	}
	heapPage, err := s.FetchHeapPage(tableName, rid.GetPageId())
	if err != nil {
		return false, err
	}
	record, err := heapPage.Read(rid.GetSlotNum())
	if err != nil {
		return false, nil
	}
	oldValues, err := tuple.NewTuple(&rid, record).GetValues(tableMetadata.Schema())
	if err != nil {
		return false, err
	}

	heapPage.Delete(rid.GetSlotNum())
	filePath := tableMetadata.FilePath()
	if err := s.diskManager.WritePage(filePath, rid.GetPageId(), heapPage.Data()[:]); err != nil {
		return false, err
	}
	s.bufferCache.Invalidate(filePath, rid.GetPageId())

	if s.indexNotifier != nil {
		s.indexNotifier.OnDelete(tableName, rid, oldValues)
	}
	return true, nil
}

// Scan visits every live record in ascending page and slot order, which
// is the insertion order. A record that cannot be decoded because the
// file ends mid-page stops the scan with what was read so far.
func (s *StorageManager) Scan(tableName string, visitor func(rid page.RID, values []types.Value) error) error {
	tableMetadata, err := s.catalog_.GetTableByName(tableName)
	if err != nil {
		return err
	}
	pageCount, err := s.PageCount(tableName)
	if err != nil {
		return err
	}

	for pageID := types.PageID(0); pageID < types.PageID(pageCount); pageID++ {
		heapPage, err := s.FetchHeapPage(tableName, pageID)
		if err != nil {
			return err
		}
		for _, slotNum := range heapPage.LiveSlotIds() {
			record, err := heapPage.Read(slotNum)
			if err != nil {
				continue
			}
			rid := page.NewRID(pageID, slotNum)
			values, err := tuple.NewTuple(rid, record).GetValues(tableMetadata.Schema())
			if err != nil {
				return nil
			}
			if err := visitor(*rid, values); err != nil {
				return err
			}
		}
	}
	return nil
}

// PageCount derives the number of pages from the file length, counting
// a trailing partial page as a full one.
func (s *StorageManager) PageCount(tableName string) (int32, error) {
	tableMetadata, err := s.catalog_.GetTableByName(tableName)
	if err != nil {
		return 0, err
	}
	fileLen, err := s.diskManager.FileSize(tableMetadata.FilePath())
	if err != nil {
		return 0, err
	}
	return int32((fileLen + int64(common.PageSize) - 1) / int64(common.PageSize)), nil
}

// FetchHeapPage loads a page of the table through the buffer cache and
// wraps it for slotted access.
func (s *StorageManager) FetchHeapPage(tableName string, pageID types.PageID) (*page.HeapPage, error) {
	tableMetadata, err := s.catalog_.GetTableByName(tableName)
	if err != nil {
		return nil, err
	}
	buf, err := s.bufferCache.GetPage(tableMetadata.FilePath(), pageID)
	if err != nil {
		return nil, err
	}
	return page.NewHeapPage(pageID, buf), nil
}
