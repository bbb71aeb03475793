package expression

import (
	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/types"
)

// AndPredicate holds when every child holds, stopping at the first
// miss.
type AndPredicate struct {
	children []Predicate
}

func NewAndPredicate(children ...Predicate) *AndPredicate {
	common.SH_Assert(len(children) >= 2, "AND needs at least two children")
	return &AndPredicate{children}
}

func (p *AndPredicate) Test(values []types.Value) bool {
	for _, child := range p.children {
		if !child.Test(values) {
			return false
		}
	}
	return true
}

// OrPredicate holds when any child holds, stopping at the first hit.
type OrPredicate struct {
	children []Predicate
}

func NewOrPredicate(children ...Predicate) *OrPredicate {
	common.SH_Assert(len(children) >= 2, "OR needs at least two children")
	return &OrPredicate{children}
}

func (p *OrPredicate) Test(values []types.Value) bool {
	for _, child := range p.children {
		if child.Test(values) {
			return true
		}
	}
	return false
}

// NotPredicate inverts its child.
type NotPredicate struct {
	child Predicate
}

func NewNotPredicate(child Predicate) *NotPredicate {
	return &NotPredicate{child}
}

func (p *NotPredicate) Test(values []types.Value) bool {
	return !p.child.Test(values)
}
