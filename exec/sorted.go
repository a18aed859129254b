package exec

import (
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
)

// Sorted wraps a cursor that is already grouped by handledOrdering
// (possibly empty — inner may be an unordered scan) with a comparator
// that additionally orders remainderOrdering within each run of equal
// handled keys. Because handledOrdering is itself part of the
// comparator, a single composite sort over (handled, remainder)
// reproduces "runs of equal handled keys sorted by the remainder
// comparator" without needing to detect run boundaries explicitly: rows
// that already differ on a handled key sort by it exactly as they
// already were ordered; rows tied on every handled key fall through to
// the remainder comparator.
type Sorted[S any] struct {
	inner     Node[S]
	handled   *ordering.List
	remainder *ordering.List
	access    RecordAccess[S]
	support   StorageAccess[S]
}

// NewSorted builds a Sorted node. handled is the ordering inner already
// satisfies (may be ordering.Of(typeName) with zero entries); remainder
// is the ordering this node must additionally impose.
func NewSorted[S any](inner Node[S], handled, remainder *ordering.List, access RecordAccess[S], support StorageAccess[S]) *Sorted[S] {
	return &Sorted[S]{inner: inner, handled: handled, remainder: remainder, access: access, support: support}
}

func (n *Sorted[S]) less(a, b S) bool {
	if n.handled != nil {
		for _, e := range n.handled.Entries() {
			if c := n.compareDir(a, b, e); c != 0 {
				return c < 0
			}
		}
	}
	if n.remainder != nil {
		for _, e := range n.remainder.Entries() {
			if c := n.compareDir(a, b, e); c != 0 {
				return c < 0
			}
		}
	}
	return false
}

func (n *Sorted[S]) compareDir(a, b S, e model.OrderingEntry) int {
	c := n.access.Compare(a, b, e.Property)
	if e.Direction == model.Descending {
		return -c
	}
	return c
}

func (n *Sorted[S]) Fetch(values filter.FilterValues) (Cursor[S], error) {
	cur, err := n.inner.Fetch(values)
	if err != nil {
		return nil, err
	}
	buf := n.support.CreateSortBuffer()
	for {
		rec, ok, err := cur.Next()
		if err != nil {
			cur.Close()
			buf.Close()
			return nil, err
		}
		if !ok {
			break
		}
		buf.Add(rec)
	}
	if err := cur.Close(); err != nil {
		buf.Close()
		return nil, err
	}
	return buf.Sorted(n.less), nil
}

func (n *Sorted[S]) Count(values filter.FilterValues) (int64, error) {
	return n.inner.Count(values)
}

func (n *Sorted[S]) Filter() filter.Filter { return n.inner.Filter() }

func (n *Sorted[S]) Ordering() *ordering.List {
	handled, remainder := entriesOf(n.handled), entriesOf(n.remainder)
	entries := make([]model.OrderingEntry, 0, len(handled)+len(remainder))
	entries = append(entries, handled...)
	entries = append(entries, remainder...)
	return ordering.Of(n.support.StorableType().Name(), entries...)
}

func (n *Sorted[S]) PrintPlan(indent int) string {
	label := "full sort: "
	if n.handled != nil && n.handled.Len() > 0 {
		label = "finish sort: "
	}
	return pad(indent) + label + n.Ordering().String() + "\n" + n.inner.PrintPlan(indent+1)
}
