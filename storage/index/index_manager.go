package index

import (
	pair "github.com/notEpsilon/go-pair"

	"github.com/ymakino/TsubameDB/catalog"
	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/container/btree"
	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/storage/access"
	"github.com/ymakino/TsubameDB/storage/page"
	"github.com/ymakino/TsubameDB/types"
)

// IndexManager owns the in-memory B+ trees backing the single-column
// INT indexes registered in the catalog. It is installed on the storage
// manager as its index notifier so heap mutations keep trees current.
type IndexManager struct {
	catalog_       *catalog.Catalog
	storageManager *access.StorageManager
	trees          map[string]*btree.BPlusTree
}

func NewIndexManager(catalog_ *catalog.Catalog, storageManager *access.StorageManager) *IndexManager {
	return &IndexManager{catalog_, storageManager, make(map[string]*btree.BPlusTree)}
}

// CreateIndex registers the index schema and bulk-builds its tree from
// a full table scan. Only INT columns can carry an index. The file at
// filePath is an empty marker, the tree lives in memory.
func (im *IndexManager) CreateIndex(name string, tableName string, columnName string, filePath string) error {
	tableMetadata, err := im.catalog_.GetTableByName(tableName)
	if err != nil {
		return err
	}
	colIndex := tableMetadata.Schema().GetColIndex(columnName)
	if colIndex == common.InvalidColIndex {
		return errors.Wrapf(errors.ErrSchema, "table %s has no column %s", tableName, columnName)
	}
	if tableMetadata.Schema().GetColumn(colIndex).GetType() != types.Integer {
		return errors.Wrapf(errors.ErrSchema,
			"index %s: column %s is not INT", name, columnName)
	}

	if err := im.catalog_.RegisterIndex(catalog.NewIndexSchema(name, tableName, columnName, filePath)); err != nil {
		return err
	}
	if filePath != "" {
		if err := im.storageManager.CreateMarkerFile(filePath); err != nil {
			return err
		}
	}
	return im.buildTree(name, tableName, colIndex)
}

func (im *IndexManager) buildTree(name string, tableName string, colIndex uint32) error {
	entries := make([]pair.Pair[int32, page.RID], 0)
	err := im.storageManager.Scan(tableName, func(rid page.RID, values []types.Value) error {
		entries = append(entries, pair.Pair[int32, page.RID]{First: values[colIndex].ToInteger(), Second: rid})
		return nil
	})
	if err != nil {
		return err
	}

	tree := btree.NewBPlusTree(common.BTreeOrder)
	for _, entry := range entries {
		tree.Insert(entry.First, entry.Second)
	}
	im.trees[name] = tree
	return nil
}

// BuildAll constructs the trees for every index schema already in the
// catalog, used after loading a persisted catalog.
func (im *IndexManager) BuildAll() error {
	for _, indexSchema := range im.catalog_.GetAllIndexes() {
		tableMetadata, err := im.catalog_.GetTableByName(indexSchema.GetTableName())
		if err != nil {
			return err
		}
		colIndex := tableMetadata.Schema().GetColIndex(indexSchema.GetColumnName())
		if colIndex == common.InvalidColIndex {
			return errors.Wrapf(errors.ErrSchema,
				"index %s references unknown column %s", indexSchema.GetIndexName(), indexSchema.GetColumnName())
		}
		if err := im.buildTree(indexSchema.GetIndexName(), indexSchema.GetTableName(), colIndex); err != nil {
			return err
		}
	}
	return nil
}

func (im *IndexManager) getTree(name string) (*btree.BPlusTree, *catalog.IndexSchema, error) {
	indexSchema, err := im.catalog_.GetIndexByName(name)
	if err != nil {
		return nil, nil, err
	}
	tree, ok := im.trees[name]
	if !ok {
		return nil, nil, errors.Wrapf(errors.ErrInvariant, "index %s has no tree", name)
	}
	return tree, indexSchema, nil
}

// SearchRids point-reads the tree.
func (im *IndexManager) SearchRids(name string, key int32) ([]page.RID, error) {
	tree, _, err := im.getTree(name)
	if err != nil {
		return nil, err
	}
	return tree.Search(key), nil
}

// RangeSearchRids reads every RID with key in [low, high].
func (im *IndexManager) RangeSearchRids(name string, low int32, high int32) ([]page.RID, error) {
	tree, _, err := im.getTree(name)
	if err != nil {
		return nil, err
	}
	return tree.RangeSearch(low, high), nil
}

// Lookup fetches the records behind a point search.
func (im *IndexManager) Lookup(name string, key int32) ([][]types.Value, error) {
	tree, indexSchema, err := im.getTree(name)
	if err != nil {
		return nil, err
	}
	return im.fetchAll(indexSchema.GetTableName(), tree.Search(key))
}

// RangeLookup fetches the records behind a range search.
func (im *IndexManager) RangeLookup(name string, low int32, high int32) ([][]types.Value, error) {
	tree, indexSchema, err := im.getTree(name)
	if err != nil {
		return nil, err
	}
	return im.fetchAll(indexSchema.GetTableName(), tree.RangeSearch(low, high))
}

func (im *IndexManager) fetchAll(tableName string, rids []page.RID) ([][]types.Value, error) {
	records := make([][]types.Value, 0, len(rids))
	for _, rid := range rids {
		values, err := im.storageManager.Read(tableName, rid)
		if err != nil {
			return nil, err
		}
		records = append(records, values)
	}
	return records, nil
}

// IndexedTable resolves the table an index serves.
func (im *IndexManager) IndexedTable(name string) (string, error) {
	indexSchema, err := im.catalog_.GetIndexByName(name)
	if err != nil {
		return "", err
	}
	return indexSchema.GetTableName(), nil
}

// OnInsert maintains every index whose table matches. The indexed
// column must hold an INT, anything else means the catalog and the heap
// disagree.
func (im *IndexManager) OnInsert(tableName string, rid page.RID, values []types.Value) {
	im.applyToIndexes(tableName, values, func(tree *btree.BPlusTree, key int32) {
		tree.Insert(key, rid)
	})
}

// OnDelete is the inverse of OnInsert.
func (im *IndexManager) OnDelete(tableName string, rid page.RID, values []types.Value) {
	im.applyToIndexes(tableName, values, func(tree *btree.BPlusTree, key int32) {
		tree.Delete(key, rid)
	})
}

func (im *IndexManager) applyToIndexes(tableName string, values []types.Value, apply func(tree *btree.BPlusTree, key int32)) {
	for _, indexSchema := range im.catalog_.GetAllIndexes() {
		if indexSchema.GetTableName() != tableName {
			continue
		}
		tableMetadata, err := im.catalog_.GetTableByName(tableName)
		common.SH_Assert(err == nil, "index maintenance on unknown table "+tableName)
		colIndex := tableMetadata.Schema().GetColIndex(indexSchema.GetColumnName())
		common.SH_Assert(colIndex != common.InvalidColIndex,
			"index maintenance on unknown column "+indexSchema.GetColumnName())
		key := values[colIndex]
		common.SH_Assert(key.ValueType() == types.Integer,
			"indexed column "+indexSchema.GetColumnName()+" holds a non INT value")
		tree, ok := im.trees[indexSchema.GetIndexName()]
		common.SH_Assert(ok, "index "+indexSchema.GetIndexName()+" has no tree")
		apply(tree, key.ToInteger())
	}
}
