package executors

import (
	"github.com/ymakino/TsubameDB/storage/page"
	"github.com/ymakino/TsubameDB/storage/table/schema"
	"github.com/ymakino/TsubameDB/types"
)

// Row is the unit flowing through the operator pipeline: decoded
// values, the RID they came from, and the schema describing the values
// at this stage. Joins and projections emit rows whose RID belongs to
// the driving side and must not be used for mutations.
type Row struct {
	values  []types.Value
	rid     *page.RID
	schema_ *schema.Schema
}

func NewRow(values []types.Value, rid *page.RID, schema_ *schema.Schema) *Row {
	return &Row{values, rid, schema_}
}

func (r *Row) GetValue(colIndex uint32) types.Value { return r.values[colIndex] }

func (r *Row) Values() []types.Value { return r.values }

func (r *Row) GetRID() *page.RID { return r.rid }

func (r *Row) Schema() *schema.Schema { return r.schema_ }

// Executor is the pull-based operator lifecycle. Init prepares state,
// Next returns the next row or nil when exhausted, Close releases
// resources and cascades to children.
type Executor interface {
	Init() error
	Next() (*Row, error)
	Close()
}
