package expression

import (
	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/storage/table/schema"
	"github.com/ymakino/TsubameDB/types"
)

type ComparisonType int

const (
	Equal ComparisonType = iota
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

func (c ComparisonType) String() string {
	switch c {
	case Equal:
		return "="
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	}
	return "?"
}

// ComparisonPredicate orders an INT column against a literal.
type ComparisonPredicate struct {
	colIndex    uint32
	compareType ComparisonType
	value       int32
}

func NewComparisonPredicate(schema_ *schema.Schema, colIndex uint32, compareType ComparisonType, value int32) (*ComparisonPredicate, error) {
	if colIndex >= schema_.GetColumnCount() {
		return nil, errors.Wrapf(errors.ErrSchema, "column index %d out of range", colIndex)
	}
	col := schema_.GetColumn(colIndex)
	if col.GetType() != types.Integer {
		return nil, errors.Wrapf(errors.ErrSchema,
			"%s comparison needs an INT column, %s is %v", compareType, col.GetColumnName(), col.GetType())
	}
	return &ComparisonPredicate{colIndex, compareType, value}, nil
}

func (p *ComparisonPredicate) Test(values []types.Value) bool {
	v := values[p.colIndex].ToInteger()
	switch p.compareType {
	case Equal:
		return v == p.value
	case LessThan:
		return v < p.value
	case LessThanOrEqual:
		return v <= p.value
	case GreaterThan:
		return v > p.value
	case GreaterThanOrEqual:
		return v >= p.value
	}
	return false
}

// EqualityPredicate tests value equality on any column type. The
// expected literal's type must match the column's.
type EqualityPredicate struct {
	colIndex uint32
	expected types.Value
}

func NewEqualityPredicate(schema_ *schema.Schema, colIndex uint32, expected types.Value) (*EqualityPredicate, error) {
	if colIndex >= schema_.GetColumnCount() {
		return nil, errors.Wrapf(errors.ErrSchema, "column index %d out of range", colIndex)
	}
	col := schema_.GetColumn(colIndex)
	if col.GetType() != expected.ValueType() {
		return nil, errors.Wrapf(errors.ErrValue,
			"column %s is %v, literal is %v", col.GetColumnName(), col.GetType(), expected.ValueType())
	}
	return &EqualityPredicate{colIndex, expected}, nil
}

func (p *EqualityPredicate) Test(values []types.Value) bool {
	return values[p.colIndex].CompareEquals(p.expected)
}
