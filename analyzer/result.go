package analyzer

import (
	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
	"github.com/corestash/queryplan/scoring"
)

// Result is the indexed-query analyzer's verdict for one conjunct: which
// index (local or foreign) it chose, the composite score that won, and
// the handled/remainder split the executor tree must honor (spec §4.5).
type Result[S any] struct {
	TypeName  string
	FullFilter filter.Filter // the conjunct's entire predicate: handled AND remainder

	Score     scoring.Composite
	Index     model.IndexDescriptor
	KeyMatch  bool

	IdentityFilters    []filter.Filter
	RangeStart         *filter.Filter
	RangeEnd           *filter.Filter
	ShouldReverseRange bool
	CoveringFilters    []filter.Filter

	HandledOrdering *ordering.List
	ReverseOrder    bool

	RemainderFilter   filter.Filter
	RemainderOrdering *ordering.List

	// Merged marks a result produced by MergeRemainder: its identity
	// and range bindings no longer refer to one conjunct's literal
	// values (two conjuncts with the same index shape but different
	// constants were fused), so CreateExecutor must build an unbound
	// natural-order scan of Index rather than a seek, pushing every
	// original literal comparison into RemainderFilter.
	Merged bool

	// Foreign-only fields, populated when this result was reached
	// through a join (spec §4.5 step 3).
	Foreign         bool
	JoinProperty    string
	JoinInternal    model.PropertyPath
	JoinExternal    model.PropertyPath
	OuterBuild      func() (exec.Node[any], error)
	OuterAccess     exec.RecordAccess[any]
	OuterOrdering   *ordering.List
	OuterAtMostOne  bool
	Writable        bool
	joinPlaceholder string

	Support exec.StorageAccess[S]
	Access  exec.RecordAccess[S]
}

// HandlesAnything reports whether filtering matched anything or
// ordering is (partially) handled (spec §4.5's Result.handlesAnything).
func (r Result[S]) HandlesAnything() bool {
	return r.Score.Filtering.HasAnyMatch() || (r.HandledOrdering != nil && r.HandledOrdering.Len() > 0)
}

// HasJoinedAtom reports whether the conjunct this result handles
// includes at least one atom chained through a reference property —
// used by the union analyzer's full-scan collapse exemption (spec §4.6
// step 4: subplans with both a filtering match and a joined atom are
// kept separate so their joins don't explode into the full scan).
func (r Result[S]) HasJoinedAtom() bool { return r.Foreign }

// CanMergeRemainder reports whether r and other use the same index in
// the same way — same clustered/unique/propertyCount/arrangement/
// preference/reverse/handled-shape/orderings — so the only allowed
// difference is the remainder (spec §4.5's Result.canMergeRemainder).
// "Same way" is a structural comparison: literal bound values (which
// constant an identity atom compares against) are deliberately excluded,
// since two conjuncts scoring identically on an index but disagreeing on
// a literal are exactly the case this check exists to catch (spec §8
// scenario 3, `name="Alice" OR name="Bob"`).
func (r Result[S]) CanMergeRemainder(other Result[S]) bool {
	if r.Foreign != other.Foreign || r.JoinProperty != other.JoinProperty {
		return false
	}
	if r.Index.Name != other.Index.Name {
		return false
	}
	a, b := r.Score.Filtering, other.Score.Filtering
	if a.IdentityCount != b.IdentityCount ||
		a.HasRangeStart != b.HasRangeStart ||
		a.HasRangeEnd != b.HasRangeEnd ||
		a.ShouldReverseRange != b.ShouldReverseRange ||
		a.ArrangementScore != b.ArrangementScore ||
		a.KeyMatch != b.KeyMatch ||
		a.IndexPropertyCount != b.IndexPropertyCount {
		return false
	}
	if (a.PreferenceScore == nil) != (b.PreferenceScore == nil) {
		return false
	}
	if a.PreferenceScore != nil && a.PreferenceScore.Cmp(b.PreferenceScore) != 0 {
		return false
	}
	if r.ReverseOrder != other.ReverseOrder {
		return false
	}
	if !orderingEntriesEqual(entriesOf(r.HandledOrdering), entriesOf(other.HandledOrdering)) {
		return false
	}
	return true
}

// MergeRemainder fuses r and other, known mergeable via CanMergeRemainder,
// into a single result: the handled shape is kept, the remainder filter
// becomes the OR of both conjuncts' full filters (the same filter as the
// merged FullFilter), and the remainder orderings are concatenated and
// deduplicated (spec §4.5's Result.mergeRemainder). Because the two
// conjuncts' literal identity/range values may disagree, the merged
// result gives up binding to either one specifically: its FullFilter
// becomes the OR of both conjuncts' full predicates, marked Merged so
// CreateExecutor builds an unbound scan of Index and lets the remainder
// filter do the actual discrimination.
func (r Result[S]) MergeRemainder(other Result[S]) Result[S] {
	merged := r
	merged.Merged = true
	merged.FullFilter = filter.Or(r.FullFilter, other.FullFilter).Reduce()
	merged.RemainderFilter = merged.FullFilter
	merged.RemainderOrdering = concatOrderingDedup(r.RemainderOrdering, other.RemainderOrdering, r.TypeName)
	merged.IdentityFilters = nil
	merged.RangeStart = nil
	merged.RangeEnd = nil
	merged.CoveringFilters = nil
	return merged
}

func orderingEntriesEqual(a, b []model.OrderingEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Property.Equal(b[i].Property) || a[i].Direction != b[i].Direction {
			return false
		}
	}
	return true
}

func entriesOf(l *ordering.List) []model.OrderingEntry {
	if l == nil {
		return nil
	}
	return l.Entries()
}

func concatOrderingDedup(a, b *ordering.List, typeName string) *ordering.List {
	entries := append([]model.OrderingEntry{}, entriesOf(a)...)
	entries = append(entries, entriesOf(b)...)
	return ordering.Of(typeName, entries...)
}
