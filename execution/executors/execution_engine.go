package executors

import (
	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/execution/plans"
)

// ExecutionEngine turns physical plans into executor trees and exposes
// their output as lazily-opened row iterators.
type ExecutionEngine struct {
	context *ExecutorContext
}

func NewExecutionEngine(context *ExecutorContext) *ExecutionEngine {
	return &ExecutionEngine{context}
}

func (e *ExecutionEngine) CreateExecutor(plan plans.Plan) Executor {
	switch p := plan.(type) {
	case *plans.SeqScanPlanNode:
		return NewSeqScanExecutor(e.context, p)
	case *plans.IndexEqualityScanPlanNode:
		return NewIndexEqualityScanExecutor(e.context, p)
	case *plans.IndexRangeScanPlanNode:
		return NewIndexRangeScanExecutor(e.context, p)
	case *plans.FilterPlanNode:
		return NewFilterExecutor(e.CreateExecutor(p.GetChild()), p.GetPredicate())
	case *plans.ProjectionPlanNode:
		return NewProjectionExecutor(e.CreateExecutor(p.GetChild()), p.GetColIndexes())
	case *plans.HashJoinPlanNode:
		return NewHashJoinExecutor(e.context,
			e.CreateExecutor(p.GetLeft()), e.CreateExecutor(p.GetRight()),
			p.GetLeftColName(), p.GetRightColName())
	}
	common.SH_Assert(false, "unknown plan node")
	return nil
}

// Execute wraps the plan's executor tree in a streaming iterator.
func (e *ExecutionEngine) Execute(plan plans.Plan) RowIterator {
	return &planIterator{executor: e.CreateExecutor(plan)}
}

// RowIterator is the caller-facing pull interface. Next opens the
// pipeline on first use and closes it on exhaustion or error, Close is
// safe to call early and repeatedly.
type RowIterator interface {
	Next() (*Row, error)
	Close()
}

type planIterator struct {
	executor Executor
	opened   bool
	closed   bool
}

func (it *planIterator) Next() (*Row, error) {
	if it.closed {
		return nil, nil
	}
	if !it.opened {
		if err := it.executor.Init(); err != nil {
			it.closed = true
			return nil, err
		}
		it.opened = true
	}
	row, err := it.executor.Next()
	if err != nil {
		it.Close()
		return nil, err
	}
	if row == nil {
		it.Close()
	}
	return row, nil
}

func (it *planIterator) Close() {
	if it.opened && !it.closed {
		it.executor.Close()
	}
	it.closed = true
}

// NewSliceIterator serves pre-computed rows, used for the one-row
// diagnostics mutations report.
func NewSliceIterator(rows []*Row) RowIterator {
	return &sliceIterator{rows: rows}
}

type sliceIterator struct {
	rows []*Row
	pos  int
}

func (it *sliceIterator) Next() (*Row, error) {
	if it.pos >= len(it.rows) {
		return nil, nil
	}
	row := it.rows[it.pos]
	it.pos++
	return row, nil
}

func (it *sliceIterator) Close() {
	it.pos = len(it.rows)
}
