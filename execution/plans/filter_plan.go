package plans

import (
	"github.com/ymakino/TsubameDB/execution/expression"
)

// FilterPlanNode keeps the child rows that satisfy the predicate.
type FilterPlanNode struct {
	child     Plan
	predicate expression.Predicate
}

func NewFilterPlanNode(child Plan, predicate expression.Predicate) *FilterPlanNode {
	return &FilterPlanNode{child, predicate}
}

func (p *FilterPlanNode) GetType() PlanType { return Filter }

func (p *FilterPlanNode) GetChild() Plan { return p.child }

func (p *FilterPlanNode) GetPredicate() expression.Predicate { return p.predicate }
