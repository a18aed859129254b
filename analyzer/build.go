package analyzer

import (
	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/ordering"
)

// CreateExecutor emits the executor tree for r (spec §4.5's
// Result.createExecutor): storage-delegate passthrough when the
// embedder offers one for Index, else Key/Indexed/FullScan(Indexed),
// wrapped in Filtered iff a remainder filter remains and Sorted iff a
// remainder ordering remains. Foreign results wrap the base in a Joined
// built from the outer executor on the referenced type.
func (r Result[S]) CreateExecutor() (exec.Node[S], error) {
	base, err := r.buildBase()
	if err != nil {
		return nil, err
	}

	remainder := r.effectiveRemainderFilter()
	node := base
	if !remainder.IsOpen() && !remainder.IsClosed() {
		node = exec.NewFiltered[S](node, remainder, r.Access)
	}
	if r.RemainderOrdering != nil && r.RemainderOrdering.Len() > 0 {
		handled := r.HandledOrdering
		if handled == nil {
			handled = ordering.Of(r.TypeName)
		}
		node = exec.NewSorted[S](node, handled, r.RemainderOrdering, r.Access, r.Support)
	}
	return node, nil
}

// effectiveRemainderFilter folds CoveringFilters into RemainderFilter when
// storage can't check them off the index tuple directly. Indexed normally
// leaves covering atoms for storage to evaluate via IndexEntryQuery /
// FetchFromIndexEntryQuery instead of re-checking the fetched record, but
// when an index's storage doesn't support that (IndexEntryQuery returns
// false), Indexed.Fetch falls back to a plain FetchSubset scan that never
// evaluates them — so they must be re-applied as an ordinary remainder
// filter here, or they'd silently vanish from the plan.
func (r Result[S]) effectiveRemainderFilter() filter.Filter {
	if len(r.CoveringFilters) == 0 {
		return r.RemainderFilter
	}
	if _, ok := r.Support.IndexEntryQuery(r.Index); ok {
		return r.RemainderFilter
	}
	if r.RemainderFilter.IsOpen() {
		return filter.And(r.CoveringFilters...)
	}
	return filter.And(append([]filter.Filter{r.RemainderFilter}, r.CoveringFilters...)...)
}

func (r Result[S]) buildBase() (exec.Node[S], error) {
	if d, ok := r.Support.StorageDelegate(r.Index); ok {
		return d, nil
	}

	if r.Foreign {
		return r.buildJoined()
	}

	if r.Merged {
		if r.Score.Filtering.IndexPropertyCount > 0 {
			return exec.NewFullScanIndexed[S](r.Index, r.Support), nil
		}
		return exec.NewFullScan[S](r.Support), nil
	}

	if r.KeyMatch {
		return exec.NewKey[S](r.Index, r.IdentityFilters, r.Support), nil
	}

	if r.Score.Filtering.HasAnyMatch() || (r.HandledOrdering != nil && r.HandledOrdering.Len() > 0) {
		return exec.NewIndexed[S](r.Index, r.IdentityFilters, r.RangeStart, r.RangeEnd,
			r.ShouldReverseRange, r.HandledOrdering, r.ReverseOrder, r.CoveringFilters, r.Support), nil
	}

	return exec.NewFullScan[S](r.Support), nil
}

func (r Result[S]) buildJoined() (exec.Node[S], error) {
	outer, err := r.OuterBuild()
	if err != nil {
		return nil, err
	}

	innerIdentity := r.IdentityFilters
	innerRangeStart, innerRangeEnd := r.RangeStart, r.RangeEnd
	innerIndex := r.Index
	innerCovering := r.CoveringFilters
	innerReverseRange := r.ShouldReverseRange
	support := r.Support
	placeholder := r.joinPlaceholder
	externalPath := r.JoinExternal
	outerAccess := r.OuterAccess
	writable := r.Writable
	access := r.Access
	joinProp := r.JoinProperty

	factory := func(outerRow any, base filter.FilterValues) (exec.Node[S], filter.FilterValues, error) {
		var innerNode exec.Node[S]
		if len(innerIdentity) > 0 && r.KeyMatch {
			innerNode = exec.NewKey[S](innerIndex, innerIdentity, support)
		} else {
			innerNode = exec.NewIndexed[S](innerIndex, innerIdentity, innerRangeStart, innerRangeEnd,
				innerReverseRange, nil, false, innerCovering, support)
		}
		values := base
		if placeholder != "" {
			values = values.With(placeholder, outerAccess.Value(outerRow, externalPath))
		}
		return innerNode, values, nil
	}

	stash := func(target S, outerRow any) S {
		if !writable {
			return target
		}
		return access.Stash(target, joinProp, outerRow)
	}

	return exec.NewJoined[S](outer, factory, joinProp, r.HandledOrdering, r.OuterAtMostOne, writable, stash, r.TypeName), nil
}
