package parser

import (
	"github.com/ymakino/TsubameDB/types"
)

// Statement is the parsed form of one SQL statement. The planner and
// the processor switch on the concrete type.
type Statement interface {
	statementNode()
}

type ComparisonOp int32

const (
	OpEqual ComparisonOp = iota
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
)

func (op ComparisonOp) String() string {
	switch op {
	case OpEqual:
		return "="
	case OpLessThan:
		return "<"
	case OpLessThanOrEqual:
		return "<="
	case OpGreaterThan:
		return ">"
	case OpGreaterThanOrEqual:
		return ">="
	}
	return "?"
}

type LogicalConnector int32

const (
	ConnectorAnd LogicalConnector = iota
	ConnectorOr
)

// Condition is one comparison term of a WHERE clause. A bare boolean
// column reference parses as column = TRUE. NOT <term> and
// column != literal both arrive with Negated set.
type Condition struct {
	Column  string
	Op      ComparisonOp
	Literal types.Value
	Negated bool
}

// WhereClause keeps the conditions in textual order, with
// Connectors[i] joining Conditions[i] and Conditions[i+1]. Precedence
// (AND over OR) is re-established by the predicate compiler.
type WhereClause struct {
	Conditions []Condition
	Connectors []LogicalConnector
}

type JoinSpec struct {
	RightTable  string
	LeftColumn  string
	RightColumn string
}

// SelectQuery with an empty Columns list projects all columns of the
// pipeline schema.
type SelectQuery struct {
	Table   string
	Columns []string
	Where   *WhereClause
	Join    *JoinSpec
}

type InsertQuery struct {
	Table   string
	Columns []string
	Values  []types.Value
}

type DeleteQuery struct {
	Table string
	Where *WhereClause
}

type ColDef struct {
	Name   string
	Type   types.TypeID
	Length uint32
}

// CreateTableQuery carries inline single-column index definitions in
// declaration order.
type CreateTableQuery struct {
	Table   string
	Cols    []ColDef
	Indexes []CreateIndexQuery
}

type CreateIndexQuery struct {
	Index  string
	Table  string
	Column string
}

func (*SelectQuery) statementNode()      {}
func (*InsertQuery) statementNode()      {}
func (*DeleteQuery) statementNode()      {}
func (*CreateTableQuery) statementNode() {}
func (*CreateIndexQuery) statementNode() {}
