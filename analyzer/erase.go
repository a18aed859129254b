package analyzer

import (
	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
)

// Erase adapts a Node[S] into a Node[any], the type-erasure a Joined
// executor needs for its outer side (spec §4.7's "outer executor on the
// referenced type" when the referenced type's Go type parameter differs
// from the querying type's).
func Erase[S any](n exec.Node[S]) exec.Node[any] { return erased[S]{n} }

type erased[S any] struct{ inner exec.Node[S] }

func (e erased[S]) Fetch(values filter.FilterValues) (exec.Cursor[any], error) {
	cur, err := e.inner.Fetch(values)
	if err != nil {
		return nil, err
	}
	return erasedCursor[S]{cur}, nil
}

type erasedCursor[S any] struct{ inner exec.Cursor[S] }

func (c erasedCursor[S]) Next() (any, bool, error) {
	rec, ok, err := c.inner.Next()
	return rec, ok, err
}
func (c erasedCursor[S]) Close() error { return c.inner.Close() }

func (e erased[S]) Count(values filter.FilterValues) (int64, error) { return e.inner.Count(values) }
func (e erased[S]) Filter() filter.Filter                           { return e.inner.Filter() }
func (e erased[S]) Ordering() *ordering.List                        { return e.inner.Ordering() }
func (e erased[S]) PrintPlan(indent int) string                     { return e.inner.PrintPlan(indent) }

// EraseRecordAccess adapts a RecordAccess[S] into a RecordAccess[any].
func EraseRecordAccess[S any](a exec.RecordAccess[S]) exec.RecordAccess[any] {
	return erasedAccess[S]{a}
}

type erasedAccess[S any] struct{ inner exec.RecordAccess[S] }

func (a erasedAccess[S]) Matches(rec any, f filter.Filter, values filter.FilterValues) (bool, error) {
	return a.inner.Matches(rec.(S), f, values)
}
func (a erasedAccess[S]) Compare(x, y any, path model.PropertyPath) int {
	return a.inner.Compare(x.(S), y.(S), path)
}
func (a erasedAccess[S]) Identity(rec any) any { return a.inner.Identity(rec.(S)) }
func (a erasedAccess[S]) Value(rec any, path model.PropertyPath) any {
	return a.inner.Value(rec.(S), path)
}
func (a erasedAccess[S]) Stash(rec any, joinProp string, outerRow any) any {
	return a.inner.Stash(rec.(S), joinProp, outerRow)
}
