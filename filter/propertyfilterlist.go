package filter

import (
	"sort"

	"github.com/corestash/queryplan/internal/intern"
)

// PropertyFilterList is the sorted, memoized view of an AND-only
// conjunct's atoms that the indexed-query analyzer scores against a
// candidate index: equality atoms first (these can all collapse to an
// identity match), then range atoms in their original source order
// (only the first such atom per scoring pass becomes the index's range
// boundary), and inequality (NE) atoms last, since they can never narrow
// an index range and are always evaluated as a remainder.
type PropertyFilterList struct {
	atoms   []Filter
	origPos []int // atoms[i]'s position before the stable sort, for the preference-score bitset
}

// Len returns the number of atoms.
func (l PropertyFilterList) Len() int { return len(l.atoms) }

// At returns the atom at the given sorted position.
func (l PropertyFilterList) At(i int) Filter { return l.atoms[i] }

// OrigPosAt returns the pre-sort source position of the atom at sorted
// position i, used to set bit (N-1-origPos) of the preference score.
func (l PropertyFilterList) OrigPosAt(i int) int { return l.origPos[i] }

// Atoms returns the sorted atom slice. Callers must not mutate it.
func (l PropertyFilterList) Atoms() []Filter { return l.atoms }

func rank(op Op) int {
	switch op {
	case EQ, EXISTS:
		return 0
	case LT, LE, GT, GE:
		return 1
	case NE:
		return 2
	default:
		return 3
	}
}

// newPropertyFilterList flattens an AND-only conjunct into its leaf atoms
// and stable-sorts them by rank, preserving source order within a rank.
func newPropertyFilterList(conjunct Filter) PropertyFilterList {
	var atoms []Filter
	conjunct.Walk(func(f Filter) {
		atoms = append(atoms, f)
	})
	origPos := make([]int, len(atoms))
	idx := make([]int, len(atoms))
	for i := range atoms {
		origPos[i] = i
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return rank(atoms[idx[i]].op) < rank(atoms[idx[j]].op)
	})
	sortedAtoms := make([]Filter, len(atoms))
	sortedOrig := make([]int, len(atoms))
	for i, srcIdx := range idx {
		sortedAtoms[i] = atoms[srcIdx]
		sortedOrig[i] = origPos[srcIdx]
	}
	return PropertyFilterList{atoms: sortedAtoms, origPos: sortedOrig}
}

var filterListTable = intern.NewTable[intern.StructuralHash, PropertyFilterList]()

// ToPropertyFilterList builds (or returns the already-interned) sorted
// atom list for an AND-only conjunct. Conjuncts that hash identically —
// same atoms, same source order, before sorting — share the same
// PropertyFilterList, which lets the analyzer's per-conjunct scoring
// cache use the list's identity as a memoization key (spec §4.1).
func (f Filter) ToPropertyFilterList() PropertyFilterList {
	tokens := make([]string, 0, 4)
	f.Walk(func(leaf Filter) {
		tokens = append(tokens, leaf.String())
	})
	h := intern.HashTokens(tokens...)
	return *filterListTable.Intern(h, func() *PropertyFilterList {
		l := newPropertyFilterList(f)
		return &l
	})
}
