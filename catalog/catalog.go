package catalog

import (
	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/storage/table/schema"
)

// TableMetadata is the catalog entry for one heap table.
type TableMetadata struct {
	schema_  *schema.Schema
	name     string
	filePath string
	oid      uint32
}

func NewTableMetadata(schema_ *schema.Schema, name string, filePath string, oid uint32) *TableMetadata {
	return &TableMetadata{schema_, name, filePath, oid}
}

func (t *TableMetadata) Schema() *schema.Schema { return t.schema_ }

func (t *TableMetadata) GetTableName() string { return t.name }

func (t *TableMetadata) FilePath() string { return t.filePath }

func (t *TableMetadata) OID() uint32 { return t.oid }

// IndexSchema is the catalog entry for one single-column INT index.
// The file path is a marker only, the tree itself lives in memory.
type IndexSchema struct {
	name       string
	tableName  string
	columnName string
	filePath   string
}

func NewIndexSchema(name string, tableName string, columnName string, filePath string) *IndexSchema {
	return &IndexSchema{name, tableName, columnName, filePath}
}

func (i *IndexSchema) GetIndexName() string { return i.name }

func (i *IndexSchema) GetTableName() string { return i.tableName }

func (i *IndexSchema) GetColumnName() string { return i.columnName }

func (i *IndexSchema) FilePath() string { return i.filePath }

// Catalog is the name-keyed registry of table and index schemas.
type Catalog struct {
	tables       map[string]*TableMetadata
	indexes      map[string]*IndexSchema
	indexOrder   []string // registration order, keeps enumeration deterministic
	tableOrder   []string
	nextTableOID uint32
}

func NewCatalog() *Catalog {
	return &Catalog{
		tables:  make(map[string]*TableMetadata),
		indexes: make(map[string]*IndexSchema),
	}
}

// RegisterTable adds a table schema. Registering a name twice is a
// schema violation.
func (c *Catalog) RegisterTable(name string, schema_ *schema.Schema, filePath string) (*TableMetadata, error) {
	if _, ok := c.tables[name]; ok {
		return nil, errors.Wrapf(errors.ErrSchema, "table %s already exists", name)
	}
	tableMetadata := NewTableMetadata(schema_, name, filePath, c.nextTableOID)
	c.nextTableOID++
	c.tables[name] = tableMetadata
	c.tableOrder = append(c.tableOrder, name)
	return tableMetadata, nil
}

func (c *Catalog) GetTableByName(name string) (*TableMetadata, error) {
	if tableMetadata, ok := c.tables[name]; ok {
		return tableMetadata, nil
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "table %s", name)
}

func (c *Catalog) GetAllTables() []*TableMetadata {
	tables := make([]*TableMetadata, 0, len(c.tableOrder))
	for _, name := range c.tableOrder {
		tables = append(tables, c.tables[name])
	}
	return tables
}

// RegisterIndex adds an index schema. Registering a name twice is a
// schema violation.
func (c *Catalog) RegisterIndex(indexSchema *IndexSchema) error {
	if _, ok := c.indexes[indexSchema.GetIndexName()]; ok {
		return errors.Wrapf(errors.ErrSchema, "index %s already exists", indexSchema.GetIndexName())
	}
	c.indexes[indexSchema.GetIndexName()] = indexSchema
	c.indexOrder = append(c.indexOrder, indexSchema.GetIndexName())
	return nil
}

func (c *Catalog) GetIndexByName(name string) (*IndexSchema, error) {
	if indexSchema, ok := c.indexes[name]; ok {
		return indexSchema, nil
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "index %s", name)
}

// GetAllIndexes enumerates index schemas in registration order.
func (c *Catalog) GetAllIndexes() []*IndexSchema {
	indexes := make([]*IndexSchema, 0, len(c.indexOrder))
	for _, name := range c.indexOrder {
		indexes = append(indexes, c.indexes[name])
	}
	return indexes
}
