package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/storage/table/column"
	"github.com/ymakino/TsubameDB/storage/table/schema"
	"github.com/ymakino/TsubameDB/types"
)

const (
	tablesFileName  = "tables.json"
	indexesFileName = "indexes.json"
)

type columnJSON struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Length uint32 `json:"length"`
}

type tableJSON struct {
	Name     string       `json:"name"`
	FilePath string       `json:"filePath"`
	Columns  []columnJSON `json:"columns"`
}

type indexJSON struct {
	Name       string `json:"name"`
	TableName  string `json:"tableName"`
	ColumnName string `json:"columnName"`
	FilePath   string `json:"filePath"`
}

func parseTypeName(name string) (types.TypeID, error) {
	switch name {
	case "INT":
		return types.Integer, nil
	case "BOOLEAN":
		return types.Boolean, nil
	case "VARCHAR":
		return types.Varchar, nil
	}
	return types.Invalid, errors.Wrapf(errors.ErrSchema, "unknown column type %s", name)
}

// Save writes the catalog as tables.json and indexes.json under dir,
// creating the directory when needed.
func (c *Catalog) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(errors.ErrIO, "mkdir %s: %v", dir, err)
	}

	tables := make([]tableJSON, 0, len(c.tableOrder))
	for _, tableMetadata := range c.GetAllTables() {
		columns := make([]columnJSON, 0, tableMetadata.Schema().GetColumnCount())
		for _, col := range tableMetadata.Schema().GetColumns() {
			columns = append(columns, columnJSON{col.GetColumnName(), col.GetType().String(), col.Length()})
		}
		tables = append(tables, tableJSON{tableMetadata.GetTableName(), tableMetadata.FilePath(), columns})
	}

	indexes := make([]indexJSON, 0, len(c.indexOrder))
	for _, indexSchema := range c.GetAllIndexes() {
		indexes = append(indexes, indexJSON{
			indexSchema.GetIndexName(), indexSchema.GetTableName(),
			indexSchema.GetColumnName(), indexSchema.FilePath()})
	}

	if err := writeJSONFile(filepath.Join(dir, tablesFileName), tables); err != nil {
		return err
	}
	return writeJSONFile(filepath.Join(dir, indexesFileName), indexes)
}

// Load rebuilds a catalog from a directory written by Save. A missing
// directory or file yields an empty catalog.
func Load(dir string) (*Catalog, error) {
	c := NewCatalog()

	var tables []tableJSON
	if err := readJSONFile(filepath.Join(dir, tablesFileName), &tables); err != nil {
		return nil, err
	}
	for _, t := range tables {
		columns := make([]*column.Column, 0, len(t.Columns))
		for _, cj := range t.Columns {
			typeID, err := parseTypeName(cj.Type)
			if err != nil {
				return nil, err
			}
			columns = append(columns, column.NewColumn(cj.Name, typeID, cj.Length))
		}
		if _, err := c.RegisterTable(t.Name, schema.NewSchema(columns), t.FilePath); err != nil {
			return nil, err
		}
	}

	var indexes []indexJSON
	if err := readJSONFile(filepath.Join(dir, indexesFileName), &indexes); err != nil {
		return nil, err
	}
	for _, i := range indexes {
		if err := c.RegisterIndex(NewIndexSchema(i.Name, i.TableName, i.ColumnName, i.FilePath)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(errors.ErrIO, "marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(errors.ErrIO, "write %s: %v", path, err)
	}
	return nil
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(errors.ErrIO, "read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(errors.ErrIO, "parse %s: %v", path, err)
	}
	return nil
}
