package parser

import (
	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/opcode"

	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/types"
)

// flattenWhere linearizes a parsed predicate tree into clause form:
// conditions in textual order with the connectors between them. The
// grammar already groups AND tighter than OR, so an in-order walk
// recovers the original token order and the predicate compiler
// re-establishes precedence from the connectors alone.
func flattenWhere(expr ast.ExprNode) (*WhereClause, error) {
	clause := &WhereClause{}
	if err := flattenInto(clause, expr, false); err != nil {
		return nil, err
	}
	return clause, nil
}

func flattenInto(clause *WhereClause, expr ast.ExprNode, negated bool) error {
	switch node := expr.(type) {
	case *ast.BinaryOperationExpr:
		switch node.Op {
		case opcode.LogicAnd, opcode.LogicOr:
			if negated {
				return errors.Wrap(errors.ErrParse, "NOT over a compound predicate")
			}
			if err := flattenInto(clause, node.L, false); err != nil {
				return err
			}
			connector := ConnectorAnd
			if node.Op == opcode.LogicOr {
				connector = ConnectorOr
			}
			clause.Connectors = append(clause.Connectors, connector)
			return flattenInto(clause, node.R, false)
		}
		return appendComparison(clause, node, negated)
	case *ast.UnaryOperationExpr:
		if node.Op == opcode.Not {
			return flattenInto(clause, node.V, !negated)
		}
		return errors.Wrapf(errors.ErrParse, "unsupported operator %v in predicate", node.Op)
	case *ast.ParenthesesExpr:
		return flattenInto(clause, node.Expr, negated)
	case *ast.ColumnNameExpr:
		// bare boolean column term
		clause.Conditions = append(clause.Conditions, Condition{
			Column:  node.Name.Name.O,
			Op:      OpEqual,
			Literal: types.NewBoolean(true),
			Negated: negated,
		})
		return nil
	}
	return errors.Wrapf(errors.ErrParse, "unsupported predicate term %T", expr)
}

func appendComparison(clause *WhereClause, node *ast.BinaryOperationExpr, negated bool) error {
	op, opNegated, err := comparisonOp(node.Op)
	if err != nil {
		return err
	}
	colExpr, ok := node.L.(*ast.ColumnNameExpr)
	if !ok {
		return errors.Wrapf(errors.ErrParse, "comparison needs a column on the left, got %T", node.L)
	}
	literal, err := literalValue(node.R)
	if err != nil {
		return err
	}
	if opNegated {
		negated = !negated
	}
	clause.Conditions = append(clause.Conditions, Condition{
		Column:  colExpr.Name.Name.O,
		Op:      op,
		Literal: literal,
		Negated: negated,
	})
	return nil
}

func comparisonOp(op opcode.Op) (ComparisonOp, bool, error) {
	switch op {
	case opcode.EQ:
		return OpEqual, false, nil
	case opcode.NE:
		return OpEqual, true, nil
	case opcode.LT:
		return OpLessThan, false, nil
	case opcode.LE:
		return OpLessThanOrEqual, false, nil
	case opcode.GT:
		return OpGreaterThan, false, nil
	case opcode.GE:
		return OpGreaterThanOrEqual, false, nil
	}
	return 0, false, errors.Wrapf(errors.ErrParse, "unsupported comparison %v", op)
}
