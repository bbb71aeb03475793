package expression

import (
	"github.com/ymakino/TsubameDB/types"
)

// Predicate is a boolean test over one record's values. Column
// references are resolved to positions at construction time, so Test
// never fails at runtime.
type Predicate interface {
	Test(values []types.Value) bool
}
