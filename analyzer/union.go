package analyzer

import (
	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/internal/obslog"
	"github.com/corestash/queryplan/internal/qmetrics"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
	"github.com/corestash/queryplan/scoring"
)

// UnionQueryAnalyzer turns an arbitrary (possibly OR-laden) filter into
// an executor tree by DNF-splitting it, analyzing each conjunct on its
// own, merging subplans that only disagree on a literal, collapsing
// into a single full scan when any subplan handles nothing, and finally
// assembling a Union when more than one subplan remains (spec §4.6).
type UnionQueryAnalyzer[S any] struct {
	typeInfo model.TypeInfo
	support  exec.StorageAccess[S]
	access   exec.RecordAccess[S]
	indexed  *IndexedQueryAnalyzer[S]
	logger   obslog.Logger
	metrics  *qmetrics.Registry
}

// NewUnion builds a UnionQueryAnalyzer sitting on top of an already
// constructed IndexedQueryAnalyzer. metrics may be nil.
func NewUnion[S any](typeInfo model.TypeInfo, support exec.StorageAccess[S], access exec.RecordAccess[S], indexed *IndexedQueryAnalyzer[S], logger obslog.Logger, metrics *qmetrics.Registry) *UnionQueryAnalyzer[S] {
	if logger == nil {
		logger = obslog.NewNopLogger()
	}
	return &UnionQueryAnalyzer[S]{typeInfo: typeInfo, support: support, access: access, indexed: indexed, logger: logger, metrics: metrics}
}

// Plan produces the executor tree for f/requested (spec §4.6).
func (u *UnionQueryAnalyzer[S]) Plan(f filter.Filter, requested *ordering.List, hints scoring.Hints) (exec.Node[S], error) {
	f = f.Reduce()
	if f.IsClosed() {
		return exec.NewEmpty[S](u.support), nil
	}

	conjuncts := f.DisjunctiveNormalFormSplit()
	if len(conjuncts) == 0 {
		return exec.NewEmpty[S](u.support), nil
	}

	results := make([]Result[S], 0, len(conjuncts))
	for _, c := range conjuncts {
		r, err := u.indexed.Analyze(c, requested, hints)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	results = mergeFixedPoint(results, hints)
	results = u.collapseFullScan(results, f, requested)

	if u.metrics != nil {
		u.metrics.UnionSubplansTotal.Observe(float64(len(results)))
	}

	if len(results) == 1 {
		u.logger.Debug("query plan built", obslog.RecordType(u.typeInfo.Name()), obslog.Int("subplans", 1))
		return results[0].CreateExecutor()
	}

	total := u.totalOrderingFor(requested)
	nodes := make([]exec.Node[S], len(results))
	for i, r := range results {
		node, err := r.CreateExecutor()
		if err != nil {
			return nil, err
		}
		nodes[i] = u.withTotalOrdering(node, total)
	}

	union, err := exec.NewUnion[S](nodes, total, u.access)
	if err != nil {
		return nil, err
	}
	u.logger.Debug("query plan built", obslog.RecordType(u.typeInfo.Name()), obslog.Int("subplans", len(nodes)))
	return union, nil
}

// mergeFixedPoint repeatedly fuses any two results that only disagree on
// a literal (CanMergeRemainder) until no further fusion is possible
// (spec §4.5's Result.canMergeRemainder applied pairwise across the
// whole disjunct set, spec §8 scenario 3).
func mergeFixedPoint[S any](results []Result[S], hints scoring.Hints) []Result[S] {
	for {
		merged := false
		for i := 0; i < len(results); i++ {
			for j := i + 1; j < len(results); j++ {
				if !results[i].CanMergeRemainder(results[j]) {
					continue
				}
				results[i] = results[i].MergeRemainder(results[j])
				results = append(results[:j], results[j+1:]...)
				merged = true
				break
			}
			if merged {
				break
			}
		}
		if !merged {
			return results
		}
	}
}

// collapseFullScan implements spec §4.6 step 4: if any subplan handles
// nothing, every other subplan is folded into it as an OR'd remainder —
// except subplans that both matched something AND were reached through
// a join, which stay separate so their join doesn't get thrown away.
// If every subplan gets folded, the result is a single full scan
// carrying the original (pre-split) filter as its remainder.
func (u *UnionQueryAnalyzer[S]) collapseFullScan(results []Result[S], original filter.Filter, requested *ordering.List) []Result[S] {
	scanIdx := -1
	for i, r := range results {
		if !r.HandlesAnything() {
			scanIdx = i
			break
		}
	}
	if scanIdx == -1 {
		return results
	}

	var exempt []Result[S]
	combined := results[scanIdx].FullFilter
	for i, r := range results {
		if i == scanIdx {
			continue
		}
		if r.HasJoinedAtom() && r.Score.Filtering.HasAnyMatch() {
			exempt = append(exempt, r)
			continue
		}
		combined = filter.Or(combined, r.FullFilter)
	}

	if len(exempt) == 0 {
		return []Result[S]{u.indexed.fullScanResult(original, requested)}
	}

	scan := results[scanIdx]
	scan.RemainderFilter = combined.Reduce()
	scan.FullFilter = scan.RemainderFilter
	return append([]Result[S]{scan}, exempt...)
}

// totalOrderingFor returns the ordering every surviving union child must
// expose: requested itself if already total, else requested augmented
// with the best-matching key's properties (spec §4.6 step 5).
func (u *UnionQueryAnalyzer[S]) totalOrderingFor(requested *ordering.List) *ordering.List {
	base := requested
	if base == nil {
		base = ordering.Of(u.typeInfo.Name())
	}
	return base.WithTotalOrdering(u.typeInfo)
}

// withTotalOrdering wraps node in Sorted so its exposed Ordering()
// matches total exactly, unless it already does. When node's own
// ordering is a strict prefix of total the remaining entries are
// appended as the Sorted remainder (reusing the natural order already
// in hand); otherwise the whole ordering is resorted from scratch.
func (u *UnionQueryAnalyzer[S]) withTotalOrdering(node exec.Node[S], total *ordering.List) exec.Node[S] {
	current := entriesOf(node.Ordering())
	want := entriesOf(total)
	if orderingEntriesEqual(current, want) {
		return node
	}

	if isPrefix(current, want) {
		handled := node.Ordering()
		remainder := ordering.Of(u.typeInfo.Name(), want[len(current):]...)
		return exec.NewSorted[S](node, handled, remainder, u.access, u.support)
	}

	empty := ordering.Of(u.typeInfo.Name())
	return exec.NewSorted[S](node, empty, total, u.access, u.support)
}

func isPrefix(current, want []model.OrderingEntry) bool {
	if len(current) > len(want) {
		return false
	}
	for i := range current {
		if !current[i].Property.Equal(want[i].Property) || current[i].Direction != want[i].Direction {
			return false
		}
	}
	return true
}
