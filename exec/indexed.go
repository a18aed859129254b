package exec

import (
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
)

// IndexBound describes a resolved (start, end) range for one index
// scan, the shape FetchSubset consumes and, when storage supports it, an
// IndexEntryQuery's bound form.
type IndexBound struct {
	IdentityValues []any
	StartBoundary  Boundary
	StartValue     any
	EndBoundary    Boundary
	EndValue       any
}

// Indexed scans a secondary index narrowed by an identity prefix and an
// optional range on the position immediately after it, with any atoms
// covering other index positions checked off the index tuple rather
// than the fetched record when storage supports covering access.
type Indexed[S any] struct {
	index              model.IndexDescriptor
	identityFilters    []filter.Filter
	rangeStart         *filter.Filter
	rangeEnd           *filter.Filter
	shouldReverseRange bool
	order              *ordering.List
	reverseOrder       bool
	coveringFilters    []filter.Filter
	support            StorageAccess[S]
}

// NewIndexed builds an Indexed node. handledOrdering is the (possibly
// empty) ordering.List the OrderingScore computed as handled for this
// index; reverseOrder mirrors its ShouldReverseOrder flag.
func NewIndexed[S any](
	index model.IndexDescriptor,
	identityFilters []filter.Filter,
	rangeStart, rangeEnd *filter.Filter,
	shouldReverseRange bool,
	handledOrdering *ordering.List,
	reverseOrder bool,
	coveringFilters []filter.Filter,
	support StorageAccess[S],
) *Indexed[S] {
	return &Indexed[S]{
		index:              index,
		identityFilters:    identityFilters,
		rangeStart:         rangeStart,
		rangeEnd:           rangeEnd,
		shouldReverseRange: shouldReverseRange,
		order:              handledOrdering,
		reverseOrder:       reverseOrder,
		coveringFilters:    coveringFilters,
		support:            support,
	}
}

func (n *Indexed[S]) resolveBound(values filter.FilterValues) (IndexBound, error) {
	identityValues, err := resolveAtomValues(n.identityFilters, values)
	if err != nil {
		return IndexBound{}, err
	}

	bound := IndexBound{IdentityValues: identityValues, StartBoundary: BoundaryOpen, EndBoundary: BoundaryOpen}
	if n.rangeStart != nil {
		v, err := resolveAtomValue(*n.rangeStart, values)
		if err != nil {
			return IndexBound{}, err
		}
		bound.StartValue = v
		if n.rangeStart.Operator() == filter.GE {
			bound.StartBoundary = BoundaryInclusive
		} else {
			bound.StartBoundary = BoundaryExclusive
		}
	}
	if n.rangeEnd != nil {
		v, err := resolveAtomValue(*n.rangeEnd, values)
		if err != nil {
			return IndexBound{}, err
		}
		bound.EndValue = v
		if n.rangeEnd.Operator() == filter.LE {
			bound.EndBoundary = BoundaryInclusive
		} else {
			bound.EndBoundary = BoundaryExclusive
		}
	}

	if n.shouldReverseRange {
		bound.StartBoundary, bound.EndBoundary = bound.EndBoundary, bound.StartBoundary
		bound.StartValue, bound.EndValue = bound.EndValue, bound.StartValue
	}
	return bound, nil
}

func (n *Indexed[S]) Fetch(values filter.FilterValues) (Cursor[S], error) {
	bound, err := n.resolveBound(values)
	if err != nil {
		return nil, err
	}

	if q, ok := n.support.IndexEntryQuery(n.index); ok {
		boundQuery := BoundQuery(struct {
			Base      IndexEntryQuery
			Bound     IndexBound
			Covering  []filter.Filter
		}{Base: q, Bound: bound, Covering: n.coveringFilters})
		return n.support.FetchFromIndexEntryQuery(n.index, boundQuery)
	}

	return n.support.FetchSubset(n.index, bound.IdentityValues,
		bound.StartBoundary, bound.StartValue, bound.EndBoundary, bound.EndValue,
		n.shouldReverseRange, n.reverseOrder)
}

func (n *Indexed[S]) Count(values filter.FilterValues) (int64, error) {
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

// Filter returns the atoms this node handles directly: identity matches
// plus the range bounds. Covering atoms are NOT included — they're
// checked off the index tuple, not applied as a Filtered wrapper, so
// they must not double-count in a remainder.
func (n *Indexed[S]) Filter() filter.Filter {
	atoms := make([]filter.Filter, 0, len(n.identityFilters)+2)
	atoms = append(atoms, n.identityFilters...)
	if n.rangeStart != nil {
		atoms = append(atoms, *n.rangeStart)
	}
	if n.rangeEnd != nil {
		atoms = append(atoms, *n.rangeEnd)
	}
	if len(atoms) == 0 {
		return filter.Open()
	}
	return filter.And(atoms...)
}

func (n *Indexed[S]) Ordering() *ordering.List { return n.order }

// PrintNative renders the bound scan in storage-native form when support
// implements NativeRenderer; it returns "" when support doesn't, which
// callers read as "no native form" rather than treating PrintNative's mere
// presence as a signal.
func (n *Indexed[S]) PrintNative() string {
	renderer, ok := n.support.(NativeRenderer)
	if !ok {
		return ""
	}
	bound, err := n.resolveBound(filter.NewFilterValues())
	if err != nil {
		return ""
	}
	return renderer.RenderNative(n.index, bound, n.reverseOrder)
}

func (n *Indexed[S]) PrintPlan(indent int) string {
	label := "index scan: "
	if n.index.Clustered {
		label = "clustered index scan: "
	}
	if n.reverseOrder {
		if n.index.Clustered {
			label = "reverse clustered index scan: "
		} else {
			label = "reverse index scan: "
		}
	}
	s := pad(indent) + label + n.index.Name + "\n"
	s += pad(indent+1) + "...index: " + n.index.Name
	if len(n.identityFilters) > 0 {
		s += "\n" + pad(indent+1) + "...identity filter: " + filter.And(n.identityFilters...).String()
	}
	if n.rangeStart != nil || n.rangeEnd != nil {
		s += "\n" + pad(indent+1) + "...range filter: " + n.rangeString()
	}
	if len(n.coveringFilters) > 0 {
		s += "\n" + pad(indent+1) + "...covering filter: " + filter.And(n.coveringFilters...).String()
	}
	return s
}

func (n *Indexed[S]) rangeString() string {
	switch {
	case n.rangeStart != nil && n.rangeEnd != nil:
		return n.rangeStart.String() + " AND " + n.rangeEnd.String()
	case n.rangeStart != nil:
		return n.rangeStart.String()
	default:
		return n.rangeEnd.String()
	}
}
