package tsubame

import (
	"path/filepath"

	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/execution/executors"
	"github.com/ymakino/TsubameDB/parser"
	"github.com/ymakino/TsubameDB/planner"
	"github.com/ymakino/TsubameDB/storage/page"
	"github.com/ymakino/TsubameDB/storage/table/column"
	"github.com/ymakino/TsubameDB/storage/table/schema"
	"github.com/ymakino/TsubameDB/types"
)

// TsubameDB is the SQL-facing entry point. Every statement comes back
// as a row iterator; mutations and DDL yield a one-row diagnostics
// report.
type TsubameDB struct {
	instance *TsubameInstance
	engine   *executors.ExecutionEngine
	planner_ *planner.Planner
	baseDir  string
}

// NewTsubameDB opens or creates a database under baseDir. memKBytes
// sizes the buffer cache.
func NewTsubameDB(baseDir string, memKBytes int) (*TsubameDB, error) {
	poolSize := uint32(memKBytes * 1024 / common.PageSize)
	if poolSize == 0 {
		poolSize = common.DefaultPoolSize
	}
	instance, err := NewTsubameInstance(baseDir, poolSize)
	if err != nil {
		return nil, err
	}
	return newTsubameDB(instance, baseDir), nil
}

// NewVirtualTsubameDB runs entirely in memory without catalog
// persistence. Used by tests.
func NewVirtualTsubameDB() *TsubameDB {
	return newTsubameDB(NewVirtualTsubameInstance(common.DefaultPoolSize), "")
}

func newTsubameDB(instance *TsubameInstance, baseDir string) *TsubameDB {
	context := executors.NewExecutorContext(
		instance.GetCatalog(), instance.GetStorageManager(), instance.GetIndexManager())
	return &TsubameDB{
		instance: instance,
		engine:   executors.NewExecutionEngine(context),
		planner_: planner.NewPlanner(instance.GetCatalog()),
		baseDir:  baseDir,
	}
}

func (db *TsubameDB) Instance() *TsubameInstance { return db.instance }

// ExecuteSQL parses, plans and runs one statement. SELECT streams its
// result; INSERT reports ("INSERT", page_id, slot_id); DELETE reports
// ("DELETE", count); DDL reports the object it created.
func (db *TsubameDB) ExecuteSQL(sql string) (executors.RowIterator, error) {
	common.ShPrintf(common.DEBUG_INFO, "execute: %s\n", sql)
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	switch query := stmt.(type) {
	case *parser.SelectQuery:
		return db.executeSelect(query)
	case *parser.InsertQuery:
		return db.executeInsert(query)
	case *parser.DeleteQuery:
		return db.executeDelete(query)
	case *parser.CreateTableQuery:
		return db.executeCreateTable(query)
	case *parser.CreateIndexQuery:
		return db.executeCreateIndex(query)
	}
	return nil, errors.Wrapf(errors.ErrParse, "unsupported statement %T", stmt)
}

func (db *TsubameDB) executeSelect(query *parser.SelectQuery) (executors.RowIterator, error) {
	plan, err := db.planner_.PlanSelect(query)
	if err != nil {
		return nil, err
	}
	return db.engine.Execute(plan), nil
}

func (db *TsubameDB) executeInsert(query *parser.InsertQuery) (executors.RowIterator, error) {
	tableMetadata, err := db.instance.GetCatalog().GetTableByName(query.Table)
	if err != nil {
		return nil, err
	}
	schema_ := tableMetadata.Schema()
	if uint32(len(query.Columns)) != schema_.GetColumnCount() {
		return nil, errors.Wrapf(errors.ErrValue,
			"table %s has %d columns, INSERT supplies %d", query.Table, schema_.GetColumnCount(), len(query.Columns))
	}

	values := make([]types.Value, schema_.GetColumnCount())
	seen := make([]bool, schema_.GetColumnCount())
	for i, name := range query.Columns {
		colIndex := schema_.GetColIndex(name)
		if colIndex == common.InvalidColIndex {
			return nil, errors.Wrapf(errors.ErrSchema, "column %s not in table %s", name, query.Table)
		}
		if seen[colIndex] {
			return nil, errors.Wrapf(errors.ErrValue, "column %s supplied twice", name)
		}
		seen[colIndex] = true
		values[colIndex] = planner.CoerceLiteral(query.Values[i], schema_.GetColumn(colIndex).GetType())
	}

	rid, err := db.instance.GetStorageManager().Insert(query.Table, values)
	if err != nil {
		return nil, err
	}
	return diagnosticIterator(
		[]string{"result", "page_id", "slot_id"},
		[]types.Value{
			types.NewVarchar("INSERT"),
			types.NewInteger(int32(rid.GetPageId())),
			types.NewInteger(int32(rid.GetSlotNum())),
		}), nil
}

func (db *TsubameDB) executeDelete(query *parser.DeleteQuery) (executors.RowIterator, error) {
	tableMetadata, err := db.instance.GetCatalog().GetTableByName(query.Table)
	if err != nil {
		return nil, err
	}
	var predicate func(values []types.Value) bool
	if query.Where != nil {
		compiled, err := planner.CompilePredicate(query.Where, tableMetadata.Schema())
		if err != nil {
			return nil, err
		}
		predicate = compiled.Test
	}

	storageManager := db.instance.GetStorageManager()
	targets := make([]page.RID, 0)
	err = storageManager.Scan(query.Table, func(rid page.RID, values []types.Value) error {
		if predicate == nil || predicate(values) {
			targets = append(targets, rid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	count := int32(0)
	for _, rid := range targets {
		deleted, err := storageManager.Delete(query.Table, rid)
		if err != nil {
			return nil, err
		}
		if deleted {
			count++
		}
	}
	return diagnosticIterator(
		[]string{"result", "count"},
		[]types.Value{types.NewVarchar("DELETE"), types.NewInteger(count)}), nil
}

func (db *TsubameDB) executeCreateTable(query *parser.CreateTableQuery) (executors.RowIterator, error) {
	columns := make([]*column.Column, 0, len(query.Cols))
	for _, def := range query.Cols {
		columns = append(columns, column.NewColumn(def.Name, def.Type, def.Length))
	}
	filePath := filepath.Join(db.baseDir, query.Table+".db")
	if _, err := db.instance.GetStorageManager().CreateTable(query.Table, schema.NewSchema(columns), filePath); err != nil {
		return nil, err
	}
	for _, indexDef := range query.Indexes {
		if err := db.createIndex(&indexDef); err != nil {
			return nil, err
		}
	}
	if err := db.persistCatalog(); err != nil {
		return nil, err
	}
	return diagnosticIterator(
		[]string{"result", "table"},
		[]types.Value{types.NewVarchar("CREATE TABLE"), types.NewVarchar(query.Table)}), nil
}

func (db *TsubameDB) executeCreateIndex(query *parser.CreateIndexQuery) (executors.RowIterator, error) {
	if err := db.createIndex(query); err != nil {
		return nil, err
	}
	if err := db.persistCatalog(); err != nil {
		return nil, err
	}
	return diagnosticIterator(
		[]string{"result", "index"},
		[]types.Value{types.NewVarchar("CREATE INDEX"), types.NewVarchar(query.Index)}), nil
}

func (db *TsubameDB) createIndex(query *parser.CreateIndexQuery) error {
	filePath := filepath.Join(db.baseDir, query.Index+".idx")
	return db.instance.GetIndexManager().CreateIndex(query.Index, query.Table, query.Column, filePath)
}

func (db *TsubameDB) persistCatalog() error {
	if db.baseDir == "" {
		return nil
	}
	return db.instance.GetCatalog().Save(db.baseDir)
}

// Finalize flushes nothing (writes are through) and releases file
// handles.
func (db *TsubameDB) Finalize() {
	db.instance.Finalize()
}

func diagnosticIterator(names []string, values []types.Value) executors.RowIterator {
	columns := make([]*column.Column, 0, len(names))
	for i, name := range names {
		columns = append(columns, column.NewColumn(name, values[i].ValueType(), values[i].Size()))
	}
	row := executors.NewRow(values, nil, schema.NewSchema(columns))
	return executors.NewSliceIterator([]*executors.Row{row})
}
