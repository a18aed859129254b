package analyzer

import (
	"fmt"

	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
	"github.com/corestash/queryplan/scoring"
)

// bestForeign implements spec §4.5 step 3: for every atomic filter whose
// property path chains through a reference property, derive a plan that
// reaches the referenced type's own best index, with the join's
// internal/external equality supplying an identity value the local
// conjunct alone couldn't. Candidates whose chain crosses an outer join
// are discarded, and only "proper" references — ones this analyzer's
// ForeignCatalog actually has a planner for — are tried.
func (a *IndexedQueryAnalyzer[S]) bestForeign(conjunct filter.Filter, requested *ordering.List, hints scoring.Hints) (Result[S], bool) {
	if a.foreign == nil {
		return Result[S]{}, false
	}

	hops := chainedHops(conjunct)
	var best Result[S]
	found := false
	for _, hop := range hops {
		cand, ok := a.planThroughHop(hop, conjunct, requested, hints)
		if !ok {
			continue
		}
		if !found || scoring.CompareFull(cand.Score, best.Score, hints) > 0 {
			best = cand
			found = true
		}
	}
	return best, found
}

func chainedHops(f filter.Filter) []string {
	seen := map[string]bool{}
	var hops []string
	f.Walk(func(leaf filter.Filter) {
		hop, chained := leaf.Path().FirstHop()
		if !chained || seen[hop] {
			return
		}
		seen[hop] = true
		hops = append(hops, hop)
	})
	return hops
}

func (a *IndexedQueryAnalyzer[S]) planThroughHop(hop string, conjunct filter.Filter, requested *ordering.List, hints scoring.Hints) (Result[S], bool) {
	ref, ok := a.typeInfo.References()[hop]
	if !ok || ref.OuterJoin || len(ref.Equalities) == 0 {
		return Result[S]{}, false
	}
	planner, ok := a.foreign.Planner(ref.TargetType)
	if !ok {
		return Result[S]{}, false
	}

	cacheKey := fmt.Sprintf("%s|%s|%s", hop, conjunct.String(), orderingKey(requested))
	a.mu.Lock()
	if cached, ok := a.cache[cacheKey]; ok {
		a.mu.Unlock()
		return cached, true
	}
	a.mu.Unlock()

	outerConjunct := conjunct.AsJoinedFrom(hop)
	outerOrdering := strippedOrdering(requested, hop, ref.TargetType)

	plan, ok := planner.Plan(outerConjunct, outerOrdering, hints)
	if !ok {
		return Result[S]{}, false
	}

	eq := ref.Equalities[0]
	placeholder := "$join$" + hop + "$" + eq.Internal.String()
	syntheticEQ := filter.PropertyParam(eq.Internal, filter.EQ, placeholder)

	if a.metrics != nil {
		a.metrics.IndexScoredTotal.WithLabelValues(a.typeInfo.Name(), "foreign").Inc()
	}

	innerConjunct := filter.And(conjunct.NotJoinedFrom(hop), syntheticEQ).Reduce()
	innerBest, innerOk := a.bestLocal(innerConjunct, requested, hints)
	if !innerOk {
		return Result[S]{}, false
	}

	result := innerBest
	result.Foreign = true
	result.JoinProperty = hop
	result.JoinInternal = eq.Internal
	result.JoinExternal = eq.External
	result.OuterBuild = plan.Build
	result.OuterAccess = planner.RecordAccess()
	result.OuterOrdering = plan.Ordering
	result.OuterAtMostOne = plan.KeyMatch
	result.Writable = ref.Writable
	result.joinPlaceholder = placeholder
	result.FullFilter = conjunct

	a.mu.Lock()
	a.cache[cacheKey] = result
	a.mu.Unlock()

	return result, true
}

func orderingKey(o *ordering.List) string {
	if o == nil {
		return ""
	}
	return o.String()
}

// strippedOrdering translates requested into targetType's own namespace
// when every entry chains through hop; otherwise the foreign side gets
// no ordering hint (a conservative simplification — an ordering mixing
// hop-chained and local properties isn't pushed through the join).
func strippedOrdering(requested *ordering.List, hop, targetType string) *ordering.List {
	if requested == nil || requested.Len() == 0 {
		return nil
	}
	entries := make([]model.OrderingEntry, 0, requested.Len())
	for _, e := range requested.Entries() {
		first, chained := e.Property.FirstHop()
		if !chained || first != hop {
			return nil
		}
		entries = append(entries, model.OrderingEntry{Property: e.Property.TailFrom(), Direction: e.Direction})
	}
	return ordering.Of(targetType, entries...)
}
