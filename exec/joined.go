package exec

import (
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
)

// InnerFactory binds one outer row into the parameterized inner
// executor and the FilterValues it should fetch with. The join planner
// builds this closure from the referenced type's internal/external
// equalities (spec Design Notes: "replace bytecode generation with an
// explicit closure or a small generated state struct... hand-written,
// not runtime-generated") — there is exactly one closure per planned
// join, built once at plan-construction time, not per row.
type InnerFactory[S any] func(outerRow any, base filter.FilterValues) (Node[S], filter.FilterValues, error)

// Joined is a nested-loop join: for each row the outer executor (on the
// referenced type, type-erased to `any` since the target type parameter
// S is fixed by the enclosing query but the referenced type is not known
// at the Go type-parameter level) produces, it binds the join property's
// internal-key values into the inner executor and fetches. When the
// target type's join property is writable, each yielded record is
// stamped with the resolving outer row via stash.
type Joined[S any] struct {
	outer          Node[any]
	innerFactory   InnerFactory[S]
	joinProp       string
	innerOrder     *ordering.List
	outerAtMostOne bool
	writable       bool
	stash          func(target S, outerRow any) S
	targetTypeName string
}

// NewJoined builds a Joined node. outerAtMostOne records whether the
// outer executor is known (from its composite score, e.g. a key match)
// to yield at most one row — only then does the final ordering include
// innerOrder (spec §4.7).
func NewJoined[S any](
	outer Node[any],
	innerFactory InnerFactory[S],
	joinProp string,
	innerOrder *ordering.List,
	outerAtMostOne bool,
	writable bool,
	stash func(target S, outerRow any) S,
	targetTypeName string,
) *Joined[S] {
	return &Joined[S]{
		outer: outer, innerFactory: innerFactory, joinProp: joinProp,
		innerOrder: innerOrder, outerAtMostOne: outerAtMostOne,
		writable: writable, stash: stash, targetTypeName: targetTypeName,
	}
}

func (n *Joined[S]) Fetch(values filter.FilterValues) (Cursor[S], error) {
	outerCur, err := n.outer.Fetch(values)
	if err != nil {
		return nil, err
	}
	return &joinedCursor[S]{node: n, outer: outerCur, base: values}, nil
}

func (n *Joined[S]) Count(values filter.FilterValues) (int64, error) {
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

func (n *Joined[S]) Filter() filter.Filter { return filter.Open() }

// Ordering rewrites the outer executor's ordering from the referenced
// type's namespace into the target type's namespace by prefixing every
// property with "joinProp.", then appends innerOrder only when the
// outer side is known to yield at most one record per fetch (spec
// §4.7): otherwise innerOrder only holds within one outer row's batch
// and does not describe the whole cursor.
func (n *Joined[S]) Ordering() *ordering.List {
	outerEntries := n.outer.Ordering()
	rewritten := make([]model.OrderingEntry, 0)
	if outerEntries != nil {
		for _, e := range outerEntries.Entries() {
			rewritten = append(rewritten, model.OrderingEntry{
				Property:  e.Property.WithPrefix(n.joinProp),
				Direction: e.Direction,
			})
		}
	}
	if n.outerAtMostOne && n.innerOrder != nil {
		rewritten = append(rewritten, n.innerOrder.Entries()...)
	}
	return ordering.Of(n.targetTypeName, rewritten...)
}

func (n *Joined[S]) PrintPlan(indent int) string {
	s := pad(indent) + "join: " + n.joinProp + "\n"
	s += pad(indent+1) + "...via property: " + n.joinProp + "\n"
	s += pad(indent+1) + "...outer loop\n"
	s += n.outer.PrintPlan(indent + 2)
	s += "\n" + pad(indent+1) + "...inner loop:\n"
	return s
}

type joinedCursor[S any] struct {
	node     *Joined[S]
	outer    Cursor[any]
	base     filter.FilterValues
	inner    Cursor[S]
	outerRow any
}

func (c *joinedCursor[S]) Next() (S, bool, error) {
	for {
		if c.inner == nil {
			outerRow, ok, err := c.outer.Next()
			if err != nil {
				var zero S
				return zero, false, err
			}
			if !ok {
				var zero S
				return zero, false, nil
			}
			innerNode, values, err := c.node.innerFactory(outerRow, c.base)
			if err != nil {
				var zero S
				return zero, false, err
			}
			innerCur, err := innerNode.Fetch(values)
			if err != nil {
				var zero S
				return zero, false, err
			}
			c.inner = innerCur
			c.outerRow = outerRow
		}
		rec, ok, err := c.inner.Next()
		if err != nil {
			return rec, false, err
		}
		if !ok {
			c.inner.Close()
			c.inner = nil
			continue
		}
		if c.node.writable && c.node.stash != nil {
			rec = c.node.stash(rec, c.outerRow)
		}
		return rec, true, nil
	}
}

func (c *joinedCursor[S]) Close() error {
	var firstErr error
	if c.inner != nil {
		if err := c.inner.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.outer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
