package planner

import (
	stack "github.com/golang-collections/collections/stack"

	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/execution/expression"
	"github.com/ymakino/TsubameDB/parser"
	"github.com/ymakino/TsubameDB/storage/table/schema"
	"github.com/ymakino/TsubameDB/types"
)

// CompilePredicate turns a flat where clause into a predicate tree.
// Contiguous AND runs become AND groups, the groups are OR-ed
// together, so AND binds tighter than OR.
func CompilePredicate(where *parser.WhereClause, schema_ *schema.Schema) (expression.Predicate, error) {
	if len(where.Conditions) == 0 {
		return nil, errors.Wrap(errors.ErrValue, "where clause has no conditions")
	}
	if len(where.Connectors) != len(where.Conditions)-1 {
		return nil, errors.Wrapf(errors.ErrValue,
			"%d conditions need %d connectors, got %d",
			len(where.Conditions), len(where.Conditions)-1, len(where.Connectors))
	}

	predicates := make([]expression.Predicate, 0, len(where.Conditions))
	for i := range where.Conditions {
		predicate, err := compileCondition(&where.Conditions[i], schema_)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, predicate)
	}

	orGroups := make([]expression.Predicate, 0)
	run := stack.New()
	run.Push(predicates[0])
	for i, connector := range where.Connectors {
		if connector == parser.ConnectorAnd {
			run.Push(predicates[i+1])
			continue
		}
		orGroups = append(orGroups, combineAnd(run))
		run.Push(predicates[i+1])
	}
	orGroups = append(orGroups, combineAnd(run))
	if len(orGroups) == 1 {
		return orGroups[0], nil
	}
	return expression.NewOrPredicate(orGroups...), nil
}

func combineAnd(run *stack.Stack) expression.Predicate {
	children := make([]expression.Predicate, run.Len())
	for i := run.Len() - 1; i >= 0; i-- {
		children[i] = run.Pop().(expression.Predicate)
	}
	if len(children) == 1 {
		return children[0]
	}
	return expression.NewAndPredicate(children...)
}

func compileCondition(cond *parser.Condition, schema_ *schema.Schema) (expression.Predicate, error) {
	colIndex := schema_.GetColIndex(cond.Column)
	if colIndex == common.InvalidColIndex {
		return nil, errors.Wrapf(errors.ErrSchema, "column %s not in pipeline schema", cond.Column)
	}
	col := schema_.GetColumn(colIndex)
	literal := CoerceLiteral(cond.Literal, col.GetType())

	var predicate expression.Predicate
	var err error
	if cond.Op == parser.OpEqual {
		predicate, err = expression.NewEqualityPredicate(schema_, colIndex, literal)
	} else {
		if col.GetType() != types.Integer {
			return nil, errors.Wrapf(errors.ErrSchema,
				"%s comparison needs an INT column, %s is %v", cond.Op, cond.Column, col.GetType())
		}
		if literal.ValueType() != types.Integer {
			return nil, errors.Wrapf(errors.ErrValue,
				"column %s compares against a %v literal", cond.Column, literal.ValueType())
		}
		predicate, err = expression.NewComparisonPredicate(schema_, colIndex, comparisonType(cond.Op), literal.ToInteger())
	}
	if err != nil {
		return nil, err
	}
	if cond.Negated {
		predicate = expression.NewNotPredicate(predicate)
	}
	return predicate, nil
}

func comparisonType(op parser.ComparisonOp) expression.ComparisonType {
	switch op {
	case parser.OpLessThan:
		return expression.LessThan
	case parser.OpLessThanOrEqual:
		return expression.LessThanOrEqual
	case parser.OpGreaterThan:
		return expression.GreaterThan
	case parser.OpGreaterThanOrEqual:
		return expression.GreaterThanOrEqual
	}
	return expression.Equal
}

// CoerceLiteral adapts integer 0 and 1 literals to BOOLEAN columns.
// The parser cannot tell TRUE from 1.
func CoerceLiteral(literal types.Value, colType types.TypeID) types.Value {
	if colType == types.Boolean && literal.ValueType() == types.Integer {
		switch literal.ToInteger() {
		case 0:
			return types.NewBoolean(false)
		case 1:
			return types.NewBoolean(true)
		}
	}
	return literal
}
