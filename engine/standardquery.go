package engine

import (
	"time"

	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/internal/qerrors"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
	"github.com/corestash/queryplan/scoring"
)

// StandardQuery is a bound (filter, ordering, hints, values) tuple ready
// to plan and fetch. Immutable: Bind returns a new instance with an
// additional binding, leaving the receiver untouched (spec §3
// "Mutation happens only via 'with' combinators that return new
// instances").
type StandardQuery[S any] struct {
	engine    *QueryEngine[S]
	filter    filter.Filter
	requested *ordering.List
	hints     scoring.Hints
	values    filter.FilterValues
}

// Bind returns a copy of q with placeholder bound to v.
func (q *StandardQuery[S]) Bind(placeholder string, v any) *StandardQuery[S] {
	next := *q
	next.values = q.values.With(placeholder, v)
	return &next
}

func (q *StandardQuery[S]) bound() (filter.Filter, error) {
	bf, err := q.filter.Bind(q.values)
	if err != nil {
		return filter.Filter{}, qerrors.NewUsageError("StandardQuery", err.Error())
	}
	return bf, nil
}

// Fetch plans (or retrieves from cache) the executor tree and opens a
// cursor over it.
func (q *StandardQuery[S]) Fetch() (exec.Cursor[S], error) {
	bf, err := q.bound()
	if err != nil {
		return nil, err
	}
	node, err := q.engine.plan(bf, q.requested, q.hints)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cur, err := node.Fetch(q.values)
	q.engine.metrics.FetchDuration.WithLabelValues(q.engine.typeInfo.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		q.engine.metrics.FetchErrorsTotal.WithLabelValues(q.engine.typeInfo.Name(), "fetch").Inc()
		return nil, err
	}
	return cur, nil
}

// Count plans and counts without necessarily materializing every record
// (the executor tree may answer from storage directly).
func (q *StandardQuery[S]) Count() (int64, error) {
	bf, err := q.bound()
	if err != nil {
		return 0, err
	}
	node, err := q.engine.plan(bf, q.requested, q.hints)
	if err != nil {
		return 0, err
	}
	n, err := node.Count(q.values)
	if err != nil {
		q.engine.metrics.FetchErrorsTotal.WithLabelValues(q.engine.typeInfo.Name(), "count").Inc()
		return 0, err
	}
	return n, nil
}

// LoadOne fetches and expects exactly one record: zero results fail with
// qerrors.ErrNotFound, two or more fail with qerrors.ErrMultiple (spec §4.7
// "Failure semantics").
func (q *StandardQuery[S]) LoadOne() (S, error) {
	var zero S
	cur, err := q.Fetch()
	if err != nil {
		return zero, err
	}
	defer cur.Close()

	rec, ok, err := cur.Next()
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, qerrors.ErrNotFound
	}
	_, more, err := cur.Next()
	if err != nil {
		return zero, err
	}
	if more {
		return zero, qerrors.ErrMultiple
	}
	return rec, nil
}

// Slice fetches records in [from, to): from must be ≥0; to<0 means "no
// upper bound" (spec §4.7 "Slice (from=0, to=null) is a no-op"). from>to
// (when to≥0) is rejected as a usage error.
func (q *StandardQuery[S]) Slice(from, to int) (exec.Cursor[S], error) {
	if from < 0 {
		return nil, qerrors.NewUsageError("Slice", "from must be >= 0")
	}
	if to >= 0 && from > to {
		return nil, qerrors.NewUsageError("Slice", "from must be <= to")
	}

	sliced := *q
	sliced.hints = scoring.Hints{ConsumeSlice: true}

	cur, err := sliced.Fetch()
	if err != nil {
		return nil, err
	}
	return &sliceCursor[S]{inner: cur, skip: from, limit: to, seen: 0}, nil
}

type sliceCursor[S any] struct {
	inner exec.Cursor[S]
	skip  int
	limit int // < 0 means unbounded
	seen  int
}

func (c *sliceCursor[S]) Next() (S, bool, error) {
	for c.seen < c.skip {
		_, ok, err := c.inner.Next()
		var zero S
		if err != nil {
			return zero, false, err
		}
		if !ok {
			return zero, false, nil
		}
		c.seen++
	}
	if c.limit >= 0 && c.seen >= c.limit {
		var zero S
		return zero, false, nil
	}
	rec, ok, err := c.inner.Next()
	if err != nil || !ok {
		var zero S
		return zero, ok, err
	}
	c.seen++
	return rec, true, nil
}

func (c *sliceCursor[S]) Close() error { return c.inner.Close() }

// FetchAfter builds the direction-respecting "fetch after" disjunction
// for cursor-based pagination (spec §9 "Fetch after pagination"): given
// the last record seen under the current ordering, it plans
// `(o1 cmp1 v1) OR (o1=v1 AND o2 cmp2 v2) OR … OR (o1=v1 AND … AND on cmpn
// vn)` where cmpI is GT for ascending and LT for descending.
func (e *QueryEngine[S]) FetchAfter(last S, requested *ordering.List, hints scoring.Hints) (exec.Cursor[S], error) {
	entries := requested.Entries()
	if len(entries) == 0 {
		return nil, qerrors.NewUsageError("FetchAfter", "requested ordering must have at least one entry")
	}

	var disjuncts []filter.Filter
	for i, e2 := range entries {
		var conj []filter.Filter
		for j := 0; j < i; j++ {
			conj = append(conj, filter.PropertyConst(entries[j].Property, filter.EQ, e.access.Value(last, entries[j].Property)))
		}
		op := filter.GT
		if e2.Direction == model.Descending {
			op = filter.LT
		}
		conj = append(conj, filter.PropertyConst(e2.Property, op, e.access.Value(last, e2.Property)))
		disjuncts = append(disjuncts, filter.And(conj...))
	}

	f := filter.Or(disjuncts...).Reduce()
	q := e.Query(f, requested, hints)
	return q.Fetch()
}

// PrintPlan renders the plan-text format (spec §6) for the query without
// executing it.
func (q *StandardQuery[S]) PrintPlan() (string, error) {
	bf, err := q.bound()
	if err != nil {
		return "", err
	}
	node, err := q.engine.plan(bf, q.requested, q.hints)
	if err != nil {
		return "", err
	}
	return node.PrintPlan(0), nil
}

// PrintNative renders the storage-native representation of the plan's
// access path, if the chosen executor implements NativePrinter.
func (q *StandardQuery[S]) PrintNative() (string, bool, error) {
	bf, err := q.bound()
	if err != nil {
		return "", false, err
	}
	node, err := q.engine.plan(bf, q.requested, q.hints)
	if err != nil {
		return "", false, err
	}
	np, ok := node.(exec.NativePrinter)
	if !ok {
		return "", false, nil
	}
	native := np.PrintNative()
	return native, native != "", nil
}
