package analyzer

import (
	"sync"

	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/internal/obslog"
	"github.com/corestash/queryplan/internal/qerrors"
	"github.com/corestash/queryplan/internal/qmetrics"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
	"github.com/corestash/queryplan/scoring"
)

// IndexedQueryAnalyzer evaluates one AND-only conjunct against every
// local index on a record type, plus every foreign index reachable
// through a reference property at least one atom chains through,
// picking the best candidate (spec §4.5).
type IndexedQueryAnalyzer[S any] struct {
	typeInfo model.TypeInfo
	support  exec.StorageAccess[S]
	access   exec.RecordAccess[S]
	foreign  ForeignCatalog
	logger   obslog.Logger
	metrics  *qmetrics.Registry

	mu    sync.Mutex
	cache map[string]Result[S] // per-analyzer foreign-index cache, synchronized (spec §5)
}

// New builds an IndexedQueryAnalyzer for one record type. foreign may be
// nil if the type has no outward reference properties worth planning
// joins through. metrics may be nil, in which case index-scoring counts
// go unreported.
func New[S any](typeInfo model.TypeInfo, support exec.StorageAccess[S], access exec.RecordAccess[S], foreign ForeignCatalog, logger obslog.Logger, metrics *qmetrics.Registry) *IndexedQueryAnalyzer[S] {
	if logger == nil {
		logger = obslog.NewNopLogger()
	}
	return &IndexedQueryAnalyzer[S]{
		typeInfo: typeInfo, support: support, access: access, foreign: foreign,
		logger: logger, metrics: metrics, cache: make(map[string]Result[S]),
	}
}

// Analyze scores conjunct (which must be OR-free — callers must DNF
// split upstream) against every local and foreign candidate and returns
// the winner.
func (a *IndexedQueryAnalyzer[S]) Analyze(conjunct filter.Filter, requested *ordering.List, hints scoring.Hints) (Result[S], error) {
	if !conjunct.IsBound() {
		return Result[S]{}, qerrors.NewUsageError("Analyze", "conjunct is not fully bound")
	}
	if containsOr(conjunct) {
		return Result[S]{}, qerrors.NewUsageError("Analyze", "conjunct must not contain OR; split to DNF first")
	}

	best, bestOk := a.bestLocal(conjunct, requested, hints)
	if bestOk && best.KeyMatch {
		return best, nil
	}

	foreignBest, foreignOk := a.bestForeign(conjunct, requested, hints)
	switch {
	case bestOk && foreignOk:
		if scoring.CompareLocalVsForeign(best.Score, foreignBest.Score, hints) >= 0 {
			return best, nil
		}
		return foreignBest, nil
	case bestOk:
		return best, nil
	case foreignOk:
		return foreignBest, nil
	default:
		return a.fullScanResult(conjunct, requested), nil
	}
}

func containsOr(f filter.Filter) bool {
	switch f.Kind() {
	case filter.KindOr:
		return true
	case filter.KindAnd:
		for _, c := range f.Children() {
			if containsOr(c) {
				return true
			}
		}
	}
	return false
}

func (a *IndexedQueryAnalyzer[S]) fullScanResult(conjunct filter.Filter, requested *ordering.List) Result[S] {
	return Result[S]{
		TypeName:        a.typeInfo.Name(),
		FullFilter:      conjunct,
		RemainderFilter: conjunct,
		RemainderOrdering: requested,
		Support:         a.support,
		Access:          a.access,
	}
}

// bestLocal scores every local index on a.typeInfo against conjunct and
// requested, returning the winner by the full composite comparator
// (spec §4.5 step 1).
func (a *IndexedQueryAnalyzer[S]) bestLocal(conjunct filter.Filter, requested *ordering.List, hints scoring.Hints) (Result[S], bool) {
	var best Result[S]
	found := false
	for _, idx := range a.typeInfo.Indexes() {
		cand := a.scoreLocalIndex(idx, conjunct, requested)
		if !found || scoring.CompareFull(cand.Score, best.Score, hints) > 0 {
			best = cand
			found = true
		}
		if cand.KeyMatch {
			return cand, true
		}
	}
	return best, found
}

func (a *IndexedQueryAnalyzer[S]) scoreLocalIndex(idx model.IndexDescriptor, conjunct filter.Filter, requested *ordering.List) Result[S] {
	if a.metrics != nil {
		a.metrics.IndexScoredTotal.WithLabelValues(a.typeInfo.Name(), "local").Inc()
	}
	fs := scoring.EvaluateFiltering(idx, conjunct)
	os := scoring.EvaluateOrdering(idx, &conjunct, requested)
	composite := scoring.Composite{Filtering: fs, Ordering: os, Clustered: idx.Clustered}

	handledOrdering := ordering.Of(a.typeInfo.Name(), os.Handled...)
	remainderOrdering := ordering.Of(a.typeInfo.Name(), os.Remainder...)

	return Result[S]{
		TypeName:           a.typeInfo.Name(),
		FullFilter:         conjunct,
		Score:              composite,
		Index:              idx,
		KeyMatch:           fs.KeyMatch,
		IdentityFilters:    fs.IdentityFilters,
		RangeStart:         fs.RangeStart,
		RangeEnd:           fs.RangeEnd,
		ShouldReverseRange: fs.ShouldReverseRange,
		CoveringFilters:    fs.CoveringFilters,
		HandledOrdering:    handledOrdering,
		ReverseOrder:       os.ShouldReverseOrder,
		RemainderFilter:    fs.RemainderFilter,
		RemainderOrdering:  remainderOrdering,
		Support:            a.support,
		Access:             a.access,
	}
}
