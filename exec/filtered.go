package exec

import (
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/internal/qerrors"
	"github.com/corestash/queryplan/ordering"
)

// Filtered applies a remainder filter to an inner cursor in memory. f
// must be neither open nor closed: a plan emitting an open filter as a
// Filtered wrapper is an invariant violation (spec §4.7's failure-
// semantics table), and a closed remainder would have collapsed the
// whole plan to the always-empty executor upstream.
type Filtered[S any] struct {
	inner  Node[S]
	f      filter.Filter
	access RecordAccess[S]
}

// NewFiltered wraps inner with f. Panics if f is open or closed — the
// analyzer must never construct a Filtered node for a trivial remainder.
func NewFiltered[S any](inner Node[S], f filter.Filter, access RecordAccess[S]) *Filtered[S] {
	if f.IsOpen() || f.IsClosed() {
		panic(qerrors.NewPlanningError("Filtered built with a trivial (open/closed) remainder", nil))
	}
	return &Filtered[S]{inner: inner, f: f, access: access}
}

func (n *Filtered[S]) Fetch(values filter.FilterValues) (Cursor[S], error) {
	cur, err := n.inner.Fetch(values)
	if err != nil {
		return nil, err
	}
	return &filteredCursor[S]{inner: cur, f: n.f, values: values, access: n.access}, nil
}

func (n *Filtered[S]) Count(values filter.FilterValues) (int64, error) {
	cur, err := n.Fetch(values)
	if err != nil {
		return 0, err
	}
	defer cur.Close()
	var count int64
	for {
		_, ok, err := cur.Next()
		if err != nil {
			return 0, err
		}
		if !ok {
			return count, nil
		}
		count++
	}
}

func (n *Filtered[S]) Filter() filter.Filter {
	return filter.And(n.inner.Filter(), n.f)
}

func (n *Filtered[S]) Ordering() *ordering.List { return n.inner.Ordering() }

func (n *Filtered[S]) PrintPlan(indent int) string {
	return pad(indent) + "filter: " + n.f.String() + "\n" + n.inner.PrintPlan(indent+1)
}

type filteredCursor[S any] struct {
	inner  Cursor[S]
	f      filter.Filter
	values filter.FilterValues
	access RecordAccess[S]
}

func (c *filteredCursor[S]) Next() (S, bool, error) {
	for {
		rec, ok, err := c.inner.Next()
		if err != nil || !ok {
			return rec, ok, err
		}
		match, err := c.access.Matches(rec, c.f, c.values)
		if err != nil {
			return rec, false, err
		}
		if match {
			return rec, true, nil
		}
	}
}

func (c *filteredCursor[S]) Close() error { return c.inner.Close() }
