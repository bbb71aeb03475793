package parser

import (
	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/mysql"
	"github.com/pingcap/parser/opcode"
	driver "github.com/pingcap/tidb/types/parser_driver"

	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/types"
)

// literalValue converts a parsed literal into an engine value. TRUE
// and FALSE arrive as the integers 1 and 0; the planner coerces them
// back to booleans against BOOLEAN columns.
func literalValue(expr ast.ExprNode) (types.Value, error) {
	switch node := expr.(type) {
	case *driver.ValueExpr:
		// Datum kinds: 1 int64, 2 uint64, 5 string.
		switch node.Kind() {
		case 1:
			return types.NewInteger(int32(node.GetInt64())), nil
		case 2:
			return types.NewInteger(int32(node.GetUint64())), nil
		case 5:
			return types.NewVarchar(node.GetString()), nil
		}
		return types.Value{}, errors.Wrapf(errors.ErrParse, "unsupported literal kind %d", node.Kind())
	case *ast.UnaryOperationExpr:
		if node.Op != opcode.Minus {
			return types.Value{}, errors.Wrapf(errors.ErrParse, "unsupported literal operator %v", node.Op)
		}
		inner, err := literalValue(node.V)
		if err != nil {
			return types.Value{}, err
		}
		if inner.ValueType() != types.Integer {
			return types.Value{}, errors.Wrap(errors.ErrParse, "minus applies to integer literals only")
		}
		return types.NewInteger(-inner.ToInteger()), nil
	case *ast.ParenthesesExpr:
		return literalValue(node.Expr)
	}
	return types.Value{}, errors.Wrapf(errors.ErrParse, "expected a literal, got %T", expr)
}

// columnDefType maps a parsed column type to an engine type tag.
// BOOLEAN arrives as TINYINT(1).
func columnDefType(def *ast.ColumnDef) (types.TypeID, uint32, error) {
	switch def.Tp.Tp {
	case mysql.TypeTiny:
		return types.Boolean, 0, nil
	case mysql.TypeShort, mysql.TypeInt24, mysql.TypeLong, mysql.TypeLonglong:
		return types.Integer, 0, nil
	case mysql.TypeVarchar, mysql.TypeString:
		if def.Tp.Flen <= 0 {
			return 0, 0, errors.Wrapf(errors.ErrParse, "column %s needs a VARCHAR length", def.Name.String())
		}
		return types.Varchar, uint32(def.Tp.Flen), nil
	}
	return 0, 0, errors.Wrapf(errors.ErrParse, "unsupported column type for %s", def.Name.String())
}
