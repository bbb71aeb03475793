package executors

import (
	"github.com/ymakino/TsubameDB/execution/expression"
)

// FilterExecutor pulls child rows and emits the ones the predicate
// accepts.
type FilterExecutor struct {
	child     Executor
	predicate expression.Predicate
}

func NewFilterExecutor(child Executor, predicate expression.Predicate) *FilterExecutor {
	return &FilterExecutor{child, predicate}
}

func (e *FilterExecutor) Init() error {
	return e.child.Init()
}

func (e *FilterExecutor) Next() (*Row, error) {
	for {
		row, err := e.child.Next()
		if err != nil || row == nil {
			return nil, err
		}
		if e.predicate.Test(row.Values()) {
			return row, nil
		}
	}
}

func (e *FilterExecutor) Close() {
	e.child.Close()
}
