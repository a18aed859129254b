// Package scoring implements the index-scoring functions the planner
// ranks candidates with: FilteringScore (how well an index matches a
// predicate), OrderingScore (how well it satisfies a requested sort),
// and CompositeScore, which combines the two behind the comparators the
// indexed-query analyzer actually sorts candidates by.
package scoring

import (
	"math/big"

	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
)

// Filtering is the immutable result of scoring one index against one
// AND-only conjunct. Every field is a derived scalar computed once at
// construction; nothing here is mutated afterward.
type Filtering struct {
	valid bool // false for the zero value / "no score computed"

	IdentityCount      int
	HasRangeStart      bool
	HasRangeEnd        bool
	ShouldReverseRange bool
	ArrangementScore   int
	PreferenceScore    *big.Int
	RemainderCount     int
	CoveringCount      int
	KeyMatch           bool
	IndexPropertyCount int

	IdentityFilters  []filter.Filter
	RangeStart       *filter.Filter
	RangeEnd         *filter.Filter
	CoveringFilters  []filter.Filter
	RemainderFilter  filter.Filter
}

// HasAnyMatch reports whether the index matched anything at all: an
// identity match or a range bound.
func (s Filtering) HasAnyMatch() bool {
	return s.IdentityCount > 0 || s.HasRangeStart || s.HasRangeEnd
}

// EvaluateFiltering scores index against conjunct, an AND-only filter
// (callers must not pass a filter containing OR; use
// filter.Filter.DisjunctiveNormalFormSplit upstream). Implements spec
// §4.2's matching algorithm.
func EvaluateFiltering(index model.IndexDescriptor, conjunct filter.Filter) Filtering {
	list := conjunct.ToPropertyFilterList()
	n := list.Len()

	consumed := make([]bool, n)
	remaining := func() []int {
		var idx []int
		for i := 0; i < n; i++ {
			if !consumed[i] {
				idx = append(idx, i)
			}
		}
		return idx
	}

	pref := new(big.Int)
	setBit := func(origPos int) {
		pref.SetBit(pref, n-1-origPos, 1)
	}

	var identityFilters []filter.Filter
	identityCount := 0
	arrangement := 0
	prevMatchPos := -1
	pos := 0 // index position currently being matched

	for ; pos < index.Len(); pos++ {
		prop := index.Properties[pos].Property
		matchIdx := -1
		for _, i := range remaining() {
			a := list.At(i)
			if a.Operator() == filter.EQ && a.Path().Equal(prop) {
				matchIdx = i
				break
			}
		}
		if matchIdx == -1 {
			break
		}
		consumed[matchIdx] = true
		identityFilters = append(identityFilters, list.At(matchIdx))
		identityCount++
		setBit(list.OrigPosAt(matchIdx))
		if matchIdx >= prevMatchPos {
			arrangement++
		}
		prevMatchPos = matchIdx
	}

	hasStart, hasEnd := false, false
	var rangeStart, rangeEnd *filter.Filter
	shouldReverse := false
	if pos < index.Len() {
		prop := index.Properties[pos].Property
		for _, i := range remaining() {
			a := list.At(i)
			if !a.Path().Equal(prop) {
				continue
			}
			switch a.Operator() {
			case filter.GT, filter.GE:
				if !hasStart {
					v := a
					rangeStart = &v
					hasStart = true
					consumed[i] = true
					setBit(list.OrigPosAt(i))
				}
			case filter.LT, filter.LE:
				if !hasEnd {
					v := a
					rangeEnd = &v
					hasEnd = true
					consumed[i] = true
					setBit(list.OrigPosAt(i))
				}
			case filter.NE:
				// NE terminates the range phase for this property: stop
				// scanning further atoms on it once encountered.
			}
		}
		if (hasStart || hasEnd) && index.Properties[pos].Direction == model.Descending {
			shouldReverse = true
		}
	}

	var coveringFilters []filter.Filter
	var remainderAtoms []filter.Filter
	hasMatch := identityCount > 0 || hasStart || hasEnd
	for _, i := range remaining() {
		a := list.At(i)
		isCovering := hasMatch && index.PositionOf(a.Path()) >= 0
		if isCovering {
			coveringFilters = append(coveringFilters, a)
		} else {
			remainderAtoms = append(remainderAtoms, a)
		}
	}

	var remainderFilter filter.Filter
	if len(remainderAtoms) == 0 {
		remainderFilter = filter.Open()
	} else if len(remainderAtoms) == 1 {
		remainderFilter = remainderAtoms[0]
	} else {
		remainderFilter = filter.And(remainderAtoms...)
	}

	return Filtering{
		valid:              true,
		IdentityCount:      identityCount,
		HasRangeStart:      hasStart,
		HasRangeEnd:        hasEnd,
		ShouldReverseRange: shouldReverse,
		ArrangementScore:   arrangement,
		PreferenceScore:    pref,
		RemainderCount:     len(remainderAtoms),
		CoveringCount:      len(coveringFilters),
		KeyMatch:           index.Unique && identityCount == index.Len(),
		IndexPropertyCount: index.Len(),
		IdentityFilters:    identityFilters,
		RangeStart:         rangeStart,
		RangeEnd:           rangeEnd,
		CoveringFilters:    coveringFilters,
		RemainderFilter:    remainderFilter,
	}
}

// CompareRange is the "partial comparator (range-only)" from spec §4.2:
// non-null beats null; then identity count; then range-match presence.
// The clustered tie-break (when either has a range match or any identity
// matches) is not applied here; CompareFiltering applies it.
func CompareRange(a, b Filtering) int {
	if a.valid != b.valid {
		if a.valid {
			return 1
		}
		return -1
	}
	if !a.valid {
		return 0
	}
	if a.IdentityCount != b.IdentityCount {
		return cmpInt(a.IdentityCount, b.IdentityCount)
	}
	aRange := a.HasRangeStart || a.HasRangeEnd
	bRange := b.HasRangeStart || b.HasRangeEnd
	if aRange != bRange {
		return cmpBool(aRange, bRange)
	}
	return 0
}

// CompareFiltering is the "full comparator" from spec §4.2: range
// comparator with its clustered tie-break; then "has any matches"; then
// arrangement score; then clustered; then fewer remainder atoms; then
// more covering atoms. The clustered flags come from the caller, since a
// Filtering score does not carry its index.
func CompareFiltering(a, b Filtering, aClustered, bClustered bool) int {
	if c := compareRangeClustered(a, b, aClustered, bClustered); c != 0 {
		return c
	}
	if c := cmpBool(a.HasAnyMatch(), b.HasAnyMatch()); c != 0 {
		return c
	}
	if a.ArrangementScore != b.ArrangementScore {
		return cmpInt(a.ArrangementScore, b.ArrangementScore)
	}
	if aClustered != bClustered {
		return cmpBool(aClustered, bClustered)
	}
	if a.RemainderCount != b.RemainderCount {
		// fewer remainder atoms wins ⇒ reverse compare
		return cmpInt(b.RemainderCount, a.RemainderCount)
	}
	if a.CoveringCount != b.CoveringCount {
		return cmpInt(a.CoveringCount, b.CoveringCount)
	}
	return 0
}

func compareRangeClustered(a, b Filtering, aClustered, bClustered bool) int {
	if c := CompareRange(a, b); c != 0 {
		return c
	}
	aRange := a.HasRangeStart || a.HasRangeEnd
	bRange := b.HasRangeStart || b.HasRangeEnd
	if aRange && bRange && aClustered != bClustered {
		return cmpBool(aClustered, bClustered)
	}
	if (a.IdentityCount > 0 || b.IdentityCount > 0) && aClustered != bClustered {
		return cmpBool(aClustered, bClustered)
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	if a == b {
		return 0
	}
	if a {
		return 1
	}
	return -1
}
