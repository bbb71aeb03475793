package parser

import (
	"github.com/pingcap/parser"
	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/opcode"
	_ "github.com/pingcap/tidb/types/parser_driver"

	"github.com/ymakino/TsubameDB/errors"
)

// Parse converts one SQL statement into its logical form. Syntax
// errors and constructs outside the supported subset surface as
// ErrParse.
func Parse(sql string) (Statement, error) {
	p := parser.New()
	stmtNodes, _, err := p.Parse(sql, "", "")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrParse, "%v", err)
	}
	if len(stmtNodes) != 1 {
		return nil, errors.Wrapf(errors.ErrParse, "expected one statement, got %d", len(stmtNodes))
	}
	switch stmt := stmtNodes[0].(type) {
	case *ast.SelectStmt:
		return convertSelect(stmt)
	case *ast.InsertStmt:
		return convertInsert(stmt)
	case *ast.DeleteStmt:
		return convertDelete(stmt)
	case *ast.CreateTableStmt:
		return convertCreateTable(stmt)
	case *ast.CreateIndexStmt:
		return convertCreateIndex(stmt)
	}
	return nil, errors.Wrapf(errors.ErrParse, "unsupported statement %T", stmtNodes[0])
}

func convertSelect(stmt *ast.SelectStmt) (*SelectQuery, error) {
	if stmt.From == nil {
		return nil, errors.Wrap(errors.ErrParse, "SELECT needs a FROM clause")
	}
	query := &SelectQuery{}
	if err := fillTables(query, stmt.From.TableRefs); err != nil {
		return nil, err
	}
	for _, field := range stmt.Fields.Fields {
		if field.WildCard != nil {
			if len(stmt.Fields.Fields) != 1 {
				return nil, errors.Wrap(errors.ErrParse, "* cannot mix with named columns")
			}
			break
		}
		colExpr, ok := field.Expr.(*ast.ColumnNameExpr)
		if !ok {
			return nil, errors.Wrapf(errors.ErrParse, "unsupported select field %T", field.Expr)
		}
		query.Columns = append(query.Columns, colExpr.Name.Name.O)
	}
	if stmt.Where != nil {
		where, err := flattenWhere(stmt.Where)
		if err != nil {
			return nil, err
		}
		query.Where = where
	}
	return query, nil
}

func fillTables(query *SelectQuery, refs *ast.Join) error {
	leftName, err := tableSourceName(refs.Left)
	if err != nil {
		return err
	}
	query.Table = leftName
	if refs.Right == nil {
		return nil
	}
	rightName, err := tableSourceName(refs.Right)
	if err != nil {
		return err
	}
	if refs.On == nil {
		return errors.Wrap(errors.ErrParse, "JOIN needs an ON clause")
	}
	join, err := convertOn(refs.On, leftName, rightName)
	if err != nil {
		return err
	}
	query.Join = join
	return nil
}

func convertOn(on *ast.OnCondition, leftTable string, rightTable string) (*JoinSpec, error) {
	cmp, ok := on.Expr.(*ast.BinaryOperationExpr)
	if !ok || cmp.Op != opcode.EQ {
		return nil, errors.Wrap(errors.ErrParse, "ON clause must be a single column equality")
	}
	l, lok := cmp.L.(*ast.ColumnNameExpr)
	r, rok := cmp.R.(*ast.ColumnNameExpr)
	if !lok || !rok {
		return nil, errors.Wrap(errors.ErrParse, "ON clause must compare two columns")
	}
	leftCol, rightCol := l.Name.Name.O, r.Name.Name.O
	// Qualified names may list the join sides in either order.
	if l.Name.Table.O == rightTable || r.Name.Table.O == leftTable {
		leftCol, rightCol = rightCol, leftCol
	}
	return &JoinSpec{RightTable: rightTable, LeftColumn: leftCol, RightColumn: rightCol}, nil
}

func tableSourceName(node ast.ResultSetNode) (string, error) {
	source, ok := node.(*ast.TableSource)
	if !ok {
		return "", errors.Wrapf(errors.ErrParse, "unsupported table reference %T", node)
	}
	name, ok := source.Source.(*ast.TableName)
	if !ok {
		return "", errors.Wrapf(errors.ErrParse, "unsupported table source %T", source.Source)
	}
	return name.Name.O, nil
}

func convertInsert(stmt *ast.InsertStmt) (*InsertQuery, error) {
	tableName, err := tableSourceName(stmt.Table.TableRefs.Left)
	if err != nil {
		return nil, err
	}
	if len(stmt.Columns) == 0 {
		return nil, errors.Wrap(errors.ErrParse, "INSERT needs an explicit column list")
	}
	if len(stmt.Lists) != 1 {
		return nil, errors.Wrap(errors.ErrParse, "INSERT takes exactly one VALUES row")
	}
	query := &InsertQuery{Table: tableName}
	for _, col := range stmt.Columns {
		query.Columns = append(query.Columns, col.Name.O)
	}
	for _, expr := range stmt.Lists[0] {
		value, err := literalValue(expr)
		if err != nil {
			return nil, err
		}
		query.Values = append(query.Values, value)
	}
	if len(query.Values) != len(query.Columns) {
		return nil, errors.Wrapf(errors.ErrParse,
			"INSERT lists %d columns but %d values", len(query.Columns), len(query.Values))
	}
	return query, nil
}

func convertDelete(stmt *ast.DeleteStmt) (*DeleteQuery, error) {
	tableName, err := tableSourceName(stmt.TableRefs.TableRefs.Left)
	if err != nil {
		return nil, err
	}
	query := &DeleteQuery{Table: tableName}
	if stmt.Where != nil {
		where, err := flattenWhere(stmt.Where)
		if err != nil {
			return nil, err
		}
		query.Where = where
	}
	return query, nil
}

func convertCreateTable(stmt *ast.CreateTableStmt) (*CreateTableQuery, error) {
	query := &CreateTableQuery{Table: stmt.Table.Name.O}
	for _, def := range stmt.Cols {
		colType, length, err := columnDefType(def)
		if err != nil {
			return nil, err
		}
		query.Cols = append(query.Cols, ColDef{Name: def.Name.String(), Type: colType, Length: length})
	}
	for _, constraint := range stmt.Constraints {
		if constraint.Tp != ast.ConstraintIndex && constraint.Tp != ast.ConstraintKey {
			return nil, errors.Wrapf(errors.ErrParse, "unsupported constraint on table %s", query.Table)
		}
		if len(constraint.Keys) != 1 {
			return nil, errors.Wrapf(errors.ErrParse, "index %s must cover exactly one column", constraint.Name)
		}
		query.Indexes = append(query.Indexes, CreateIndexQuery{
			Index:  constraint.Name,
			Table:  query.Table,
			Column: constraint.Keys[0].Column.Name.O,
		})
	}
	return query, nil
}

func convertCreateIndex(stmt *ast.CreateIndexStmt) (*CreateIndexQuery, error) {
	if len(stmt.IndexPartSpecifications) != 1 {
		return nil, errors.Wrapf(errors.ErrParse, "index %s must cover exactly one column", stmt.IndexName)
	}
	return &CreateIndexQuery{
		Index:  stmt.IndexName,
		Table:  stmt.Table.Name.O,
		Column: stmt.IndexPartSpecifications[0].Column.Name.O,
	}, nil
}
