package executors

import (
	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/container/hash"
	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/storage/table/column"
	"github.com/ymakino/TsubameDB/storage/table/schema"
	"github.com/ymakino/TsubameDB/types"
)

// HashJoinExecutor is the inner equi-join. Init drains the right child
// into murmur3 buckets and closes it, Next streams the left child and
// probes. Emitted rows concatenate left then right values under the
// combined schema and carry the left row's RID.
type HashJoinExecutor struct {
	context        *ExecutorContext
	left           Executor
	right          Executor
	leftColName    string
	rightColName   string
	buckets        map[uint32][]*Row
	leftColIndex   uint32
	rightColIndex  uint32
	leftResolved   bool
	combinedSchema *schema.Schema
	pending        []*Row
	pendingPos     int
	currentLeft    *Row
}

func NewHashJoinExecutor(context *ExecutorContext, left Executor, right Executor, leftColName string, rightColName string) *HashJoinExecutor {
	return &HashJoinExecutor{context: context, left: left, right: right, leftColName: leftColName, rightColName: rightColName}
}

func (e *HashJoinExecutor) Init() error {
	if err := e.left.Init(); err != nil {
		return err
	}
	if err := e.right.Init(); err != nil {
		e.left.Close()
		return err
	}

	e.buckets = make(map[uint32][]*Row)
	e.leftResolved = false
	e.combinedSchema = nil
	e.pending = nil
	rightColResolved := false
	var rightColIndex uint32
	for {
		row, err := e.right.Next()
		if err != nil {
			e.right.Close()
			e.left.Close()
			return err
		}
		if row == nil {
			break
		}
		if !rightColResolved {
			rightColIndex = row.Schema().GetColIndex(e.rightColName)
			if rightColIndex == common.InvalidColIndex {
				e.right.Close()
				e.left.Close()
				return errors.Wrapf(errors.ErrSchema, "join column %s not found on right side", e.rightColName)
			}
			rightColResolved = true
		}
		key := hash.HashValue(row.GetValue(rightColIndex))
		e.buckets[key] = append(e.buckets[key], row)
	}
	e.rightColIndex = rightColIndex
	e.right.Close()
	return nil
}

func (e *HashJoinExecutor) Next() (*Row, error) {
	for {
		if e.pendingPos < len(e.pending) {
			match := e.pending[e.pendingPos]
			e.pendingPos++
			return e.emit(e.currentLeft, match), nil
		}

		leftRow, err := e.left.Next()
		if err != nil || leftRow == nil {
			return nil, err
		}
		if !e.leftResolved {
			e.leftColIndex = leftRow.Schema().GetColIndex(e.leftColName)
			if e.leftColIndex == common.InvalidColIndex {
				return nil, errors.Wrapf(errors.ErrSchema, "join column %s not found on left side", e.leftColName)
			}
			e.leftResolved = true
		}

		leftValue := leftRow.GetValue(e.leftColIndex)
		matches := make([]*Row, 0)
		for _, candidate := range e.buckets[hash.HashValue(leftValue)] {
			rightValue := candidate.GetValue(e.rightColIndex)
			if leftValue.ValueType() != rightValue.ValueType() {
				return nil, errors.Wrapf(errors.ErrValue,
					"join compares %v with %v", leftValue.ValueType(), rightValue.ValueType())
			}
			if leftValue.CompareEquals(rightValue) {
				matches = append(matches, candidate)
			}
		}
		if len(matches) == 0 {
			continue
		}
		e.currentLeft = leftRow
		e.pending = matches
		e.pendingPos = 0
	}
}

func (e *HashJoinExecutor) emit(leftRow *Row, rightRow *Row) *Row {
	if e.combinedSchema == nil {
		columns := make([]*column.Column, 0,
			leftRow.Schema().GetColumnCount()+rightRow.Schema().GetColumnCount())
		columns = append(columns, leftRow.Schema().GetColumns()...)
		columns = append(columns, rightRow.Schema().GetColumns()...)
		e.combinedSchema = schema.NewSchema(columns)
	}
	values := make([]types.Value, 0, len(leftRow.Values())+len(rightRow.Values()))
	values = append(values, leftRow.Values()...)
	values = append(values, rightRow.Values()...)
	return NewRow(values, leftRow.GetRID(), e.combinedSchema)
}

func (e *HashJoinExecutor) Close() {
	e.left.Close()
}
