package planner

import (
	"math"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ymakino/TsubameDB/catalog"
	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/execution/plans"
	"github.com/ymakino/TsubameDB/parser"
	"github.com/ymakino/TsubameDB/storage/table/column"
	"github.com/ymakino/TsubameDB/storage/table/schema"
	"github.com/ymakino/TsubameDB/types"
)

// Planner maps a logical SELECT onto a physical operator tree. It
// recognizes two index paths on single-table queries: a point lookup
// for one equality condition and a range scan for an AND-only chain of
// bounds on the same indexed column. Everything else becomes a
// sequential scan with a compiled filter.
type Planner struct {
	catalog_ *catalog.Catalog
}

func NewPlanner(catalog_ *catalog.Catalog) *Planner {
	return &Planner{catalog_}
}

func (p *Planner) PlanSelect(query *parser.SelectQuery) (plans.Plan, error) {
	tableMetadata, err := p.catalog_.GetTableByName(query.Table)
	if err != nil {
		return nil, err
	}

	var plan plans.Plan
	pipelineSchema := tableMetadata.Schema()
	switch {
	case query.Join != nil:
		rightMetadata, err := p.catalog_.GetTableByName(query.Join.RightTable)
		if err != nil {
			return nil, err
		}
		pipelineSchema = combineSchemas(tableMetadata.Schema(), rightMetadata.Schema())
		plan = plans.NewHashJoinPlanNode(
			plans.NewSeqScanPlanNode(query.Table),
			plans.NewSeqScanPlanNode(query.Join.RightTable),
			query.Join.LeftColumn, query.Join.RightColumn)
		if query.Where != nil {
			predicate, err := CompilePredicate(query.Where, pipelineSchema)
			if err != nil {
				return nil, err
			}
			plan = plans.NewFilterPlanNode(plan, predicate)
		}
	case query.Where != nil:
		plan, err = p.planFiltered(query.Table, query.Where, pipelineSchema)
		if err != nil {
			return nil, err
		}
	default:
		plan = plans.NewSeqScanPlanNode(query.Table)
	}

	if len(query.Columns) > 0 {
		colIndexes := make([]uint32, 0, len(query.Columns))
		for _, name := range query.Columns {
			colIndex := pipelineSchema.GetColIndex(name)
			if colIndex == common.InvalidColIndex {
				return nil, errors.Wrapf(errors.ErrSchema, "projected column %s not in pipeline schema", name)
			}
			colIndexes = append(colIndexes, colIndex)
		}
		plan = plans.NewProjectionPlanNode(plan, colIndexes)
	}
	return plan, nil
}

func (p *Planner) planFiltered(tableName string, where *parser.WhereClause, schema_ *schema.Schema) (plans.Plan, error) {
	if plan := p.tryEqualityPlan(tableName, where); plan != nil {
		return plan, nil
	}
	if plan := p.tryRangePlan(tableName, where); plan != nil {
		return plan, nil
	}
	predicate, err := CompilePredicate(where, schema_)
	if err != nil {
		return nil, err
	}
	return plans.NewFilterPlanNode(plans.NewSeqScanPlanNode(tableName), predicate), nil
}

// tryEqualityPlan matches a single non-negated equality against an
// indexed INT column. The index scan is exact, so no filter sits on
// top.
func (p *Planner) tryEqualityPlan(tableName string, where *parser.WhereClause) plans.Plan {
	if len(where.Conditions) != 1 {
		return nil
	}
	cond := where.Conditions[0]
	if cond.Negated || cond.Op != parser.OpEqual || cond.Literal.ValueType() != types.Integer {
		return nil
	}
	index := p.findIndex(tableName, cond.Column)
	if index == nil {
		return nil
	}
	return plans.NewIndexEqualityScanPlanNode(index.GetIndexName(), cond.Literal.ToInteger())
}

// tryRangePlan matches an AND-only chain whose conditions all bound
// the same indexed INT column with integer literals. Bounds intersect
// to [low, high]; a contradictory chain keeps the index path with the
// empty range [1, 0].
func (p *Planner) tryRangePlan(tableName string, where *parser.WhereClause) plans.Plan {
	for _, connector := range where.Connectors {
		if connector != parser.ConnectorAnd {
			return nil
		}
	}
	columns := mapset.NewThreadUnsafeSet[string]()
	for _, cond := range where.Conditions {
		columns.Add(cond.Column)
	}
	if columns.Cardinality() != 1 {
		return nil
	}
	columnName := where.Conditions[0].Column
	index := p.findIndex(tableName, columnName)
	if index == nil {
		return nil
	}

	hasLow, hasHigh := false, false
	var low, high int32
	raiseLow := func(bound int32) {
		if !hasLow || bound > low {
			low = bound
		}
		hasLow = true
	}
	lowerHigh := func(bound int32) {
		if !hasHigh || bound < high {
			high = bound
		}
		hasHigh = true
	}
	for _, cond := range where.Conditions {
		if cond.Negated || cond.Literal.ValueType() != types.Integer {
			return nil
		}
		v := cond.Literal.ToInteger()
		switch cond.Op {
		case parser.OpGreaterThan:
			raiseLow(v + 1)
		case parser.OpGreaterThanOrEqual:
			raiseLow(v)
		case parser.OpLessThan:
			lowerHigh(v - 1)
		case parser.OpLessThanOrEqual:
			lowerHigh(v)
		case parser.OpEqual:
			raiseLow(v)
			lowerHigh(v)
		default:
			return nil
		}
	}
	if !hasLow && !hasHigh {
		return nil
	}
	if hasLow && hasHigh {
		if low > high {
			return plans.NewIndexRangeScanPlanNode(index.GetIndexName(), 1, 0)
		}
		if low == high {
			return nil
		}
	}
	if !hasLow {
		low = math.MinInt32
	}
	if !hasHigh {
		high = math.MaxInt32
	}
	return plans.NewIndexRangeScanPlanNode(index.GetIndexName(), low, high)
}

func (p *Planner) findIndex(tableName string, columnName string) *catalog.IndexSchema {
	for _, index := range p.catalog_.GetAllIndexes() {
		if index.GetTableName() == tableName && index.GetColumnName() == columnName {
			return index
		}
	}
	return nil
}

func combineSchemas(left *schema.Schema, right *schema.Schema) *schema.Schema {
	columns := make([]*column.Column, 0, left.GetColumnCount()+right.GetColumnCount())
	columns = append(columns, left.GetColumns()...)
	columns = append(columns, right.GetColumns()...)
	return schema.NewSchema(columns)
}
