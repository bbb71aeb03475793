package executors

import (
	"github.com/ymakino/TsubameDB/storage/table/column"
	"github.com/ymakino/TsubameDB/storage/table/schema"
	"github.com/ymakino/TsubameDB/types"
)

// ProjectionExecutor narrows child rows to the configured column
// positions, carrying a schema built by indexing the child's the same
// way.
type ProjectionExecutor struct {
	child           Executor
	colIndexes      []uint32
	projectedSchema *schema.Schema
}

func NewProjectionExecutor(child Executor, colIndexes []uint32) *ProjectionExecutor {
	return &ProjectionExecutor{child: child, colIndexes: colIndexes}
}

func (e *ProjectionExecutor) Init() error {
	e.projectedSchema = nil
	return e.child.Init()
}

func (e *ProjectionExecutor) Next() (*Row, error) {
	row, err := e.child.Next()
	if err != nil || row == nil {
		return nil, err
	}

	if e.projectedSchema == nil {
		columns := make([]*column.Column, 0, len(e.colIndexes))
		for _, colIndex := range e.colIndexes {
			columns = append(columns, row.Schema().GetColumn(colIndex))
		}
		e.projectedSchema = schema.NewSchema(columns)
	}

	values := make([]types.Value, 0, len(e.colIndexes))
	for _, colIndex := range e.colIndexes {
		values = append(values, row.GetValue(colIndex))
	}
	return NewRow(values, row.GetRID(), e.projectedSchema), nil
}

func (e *ProjectionExecutor) Close() {
	e.child.Close()
}
