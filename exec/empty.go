package exec

import (
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/ordering"
)

// Empty is the always-empty executor for a filter that reduces to
// Closed (spec §8: "Filter that evaluates closed ⇒ plan is the always-
// empty executor and count() is 0").
type Empty[S any] struct {
	support StorageAccess[S]
}

// NewEmpty builds an Empty node.
func NewEmpty[S any](support StorageAccess[S]) *Empty[S] { return &Empty[S]{support: support} }

func (n *Empty[S]) Fetch(filter.FilterValues) (Cursor[S], error) { return emptyCursor[S]{}, nil }
func (n *Empty[S]) Count(filter.FilterValues) (int64, error)     { return 0, nil }
func (n *Empty[S]) Filter() filter.Filter                        { return filter.Closed() }
func (n *Empty[S]) Ordering() *ordering.List                     { return nil }
func (n *Empty[S]) PrintPlan(indent int) string {
	return pad(indent) + "full scan: " + n.support.StorableType().Name() + " (always empty)"
}

type emptyCursor[S any] struct{}

func (emptyCursor[S]) Next() (S, bool, error) {
	var zero S
	return zero, false, nil
}
func (emptyCursor[S]) Close() error { return nil }
