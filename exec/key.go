package exec

import (
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
)

// Key performs an exact lookup on a unique index whose every property is
// identity-matched by the conjunct (a "key match"). Its cursor yields at
// most one record.
type Key[S any] struct {
	index           model.IndexDescriptor
	identityFilters []filter.Filter
	support         StorageAccess[S]
}

// NewKey builds a Key node. index must be unique and identityFilters
// must cover every one of its properties (the caller — the indexed
// analyzer — guarantees this before constructing a Key node).
func NewKey[S any](index model.IndexDescriptor, identityFilters []filter.Filter, support StorageAccess[S]) *Key[S] {
	return &Key[S]{index: index, identityFilters: identityFilters, support: support}
}

func (n *Key[S]) Fetch(values filter.FilterValues) (Cursor[S], error) {
	identityValues, err := resolveAtomValues(n.identityFilters, values)
	if err != nil {
		return nil, err
	}
	return n.support.FetchSubset(n.index, identityValues, BoundaryOpen, nil, BoundaryOpen, nil, false, false)
}

func (n *Key[S]) Count(values filter.FilterValues) (int64, error) {
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

func (n *Key[S]) Filter() filter.Filter {
	return filter.And(n.identityFilters...)
}

func (n *Key[S]) Ordering() *ordering.List { return nil }

func (n *Key[S]) PrintPlan(indent int) string {
	s := pad(indent) + "index key: " + n.index.Name + "\n"
	s += pad(indent+1) + "...index: " + n.index.Name
	return s
}
