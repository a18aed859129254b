// Package ordering implements OrderingList, the canonical immutable
// sequence of (property, direction) pairs shared by requested orderings,
// index descriptors translated into orderings, and the remainder
// orderings the scoring functions compute.
package ordering

import (
	"fmt"
	"strconv"

	"github.com/corestash/queryplan/internal/intern"
	"github.com/corestash/queryplan/model"
)

// List is a backward-linked immutable sequence of ordering entries: each
// node points at its prefix parent, so appending (Concat) is O(1) in the
// appended tail and trimming from the right (Prefix) is O(k) by walking
// k parents rather than copying. Two lists built from the same (type,
// entry-sequence) are the same *List — equality is pointer identity
// because construction always goes through the weak intern table (spec
// invariant: "OrderingList lookup by identical property sequence returns
// the same instance").
type List struct {
	typeName string
	parent   *List
	entry    model.OrderingEntry // zero value for the root (empty list)
	depth    int                 // number of entries, i.e. len()

	dense []model.OrderingEntry // lazily materialized on first Entries() call
}

var listTable = intern.NewTable[intern.StructuralHash, List]()

// Of returns the interned OrderingList for typeName's given entry
// sequence, deduplicating repeated properties (the first occurrence of a
// property wins; later repeats are dropped, matching "already seen ⇒
// skip (redundant)" from the ordering-score algorithm).
func Of(typeName string, entries ...model.OrderingEntry) *List {
	deduped := dedup(entries)
	return of(typeName, deduped)
}

func dedup(entries []model.OrderingEntry) []model.OrderingEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]model.OrderingEntry, 0, len(entries))
	for _, e := range entries {
		key := e.Property.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

func of(typeName string, entries []model.OrderingEntry) *List {
	if len(entries) == 0 {
		return root(typeName)
	}
	parent := of(typeName, entries[:len(entries)-1])
	return parent.concatOne(entries[len(entries)-1])
}

var rootTable = intern.NewTable[string, List]()

func root(typeName string) *List {
	return rootTable.Intern(typeName, func() *List {
		return &List{typeName: typeName, dense: []model.OrderingEntry{}}
	})
}

func (l *List) hashKey(e model.OrderingEntry) intern.StructuralHash {
	return intern.HashTokens(l.typeName, strconv.Itoa(l.depth+1), e.Property.String(), e.Direction.String(), identityOf(l))
}

// identityOf gives a stable token for the parent's own identity: since
// *List values are interned, the pointer's string form is stable for the
// process lifetime of that node and distinguishes otherwise-identical
// (typeName, depth) pairs built from different prefixes — not expected in
// practice since Of always walks from the type's root, but kept so
// concat-from-an-arbitrary-List stays correct.
func identityOf(l *List) string {
	return fmt.Sprintf("%p", l)
}

// concatOne appends a single entry, interned per (parent identity, entry).
func (l *List) concatOne(e model.OrderingEntry) *List {
	key := l.hashKey(e)
	return listTable.Intern(key, func() *List {
		return &List{typeName: l.typeName, parent: l, entry: e, depth: l.depth + 1}
	})
}

// Concat appends entries (deduplicated against what's already present) and
// returns the resulting interned list.
func (l *List) Concat(entries ...model.OrderingEntry) *List {
	cur := l
	seen := make(map[string]bool, l.depth+len(entries))
	for _, e := range l.Entries() {
		seen[e.Property.String()] = true
	}
	for _, e := range entries {
		key := e.Property.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		cur = cur.concatOne(e)
	}
	return cur
}

// Len returns the number of entries.
func (l *List) Len() int { return l.depth }

// Entries materializes (and caches) the dense entry slice, root-to-leaf
// order.
func (l *List) Entries() []model.OrderingEntry {
	if l.dense != nil {
		return l.dense
	}
	dense := make([]model.OrderingEntry, l.depth)
	n := l
	for i := l.depth - 1; i >= 0; i-- {
		dense[i] = n.entry
		n = n.parent
	}
	l.dense = dense
	return dense
}

// At returns the i'th entry (0-based, root-to-leaf order).
func (l *List) At(i int) model.OrderingEntry { return l.Entries()[i] }

// Prefix returns the ancestor list holding exactly n leading entries,
// walking n parents up from the leaf rather than copying — the "subList
// trimming from the right is O(k)" operation from the design notes.
func (l *List) Prefix(n int) *List {
	if n < 0 || n > l.depth {
		panic("ordering: Prefix out of range")
	}
	node := l
	for node.depth > n {
		node = node.parent
	}
	return node
}

// TypeName returns the record type this list was interned under.
func (l *List) TypeName() string { return l.typeName }

// IsEmpty reports whether the list has zero entries.
func (l *List) IsEmpty() bool { return l.depth == 0 }

// IsTotal reports whether every property of at least one of the type's
// keys appears among the list's entries, i.e. the ordering gives each
// record a unique position (spec §4.6 step 5, §GLOSSARY "total
// ordering").
func (l *List) IsTotal(t model.TypeInfo) bool {
	paths := make([]model.PropertyPath, l.depth)
	for i, e := range l.Entries() {
		paths[i] = e.Property
	}
	for _, k := range model.AllKeys(t) {
		if k.ContainedIn(paths) {
			return true
		}
	}
	return false
}

// WithTotalOrdering returns l unchanged if it is already total, else
// appends the best-matching key's properties (ascending, unspecified
// direction filled from the key's natural order) so the result is total.
// Policy recorded in the design ledger: append model.BestMatchingKey(t,
// paths)'s properties, ascending, where paths is l's own requested
// properties — so a key already partly present in l needs the fewest new
// columns appended.
func (l *List) WithTotalOrdering(t model.TypeInfo) *List {
	if l.IsTotal(t) {
		return l
	}

	paths := make([]model.PropertyPath, l.depth)
	for i, e := range l.Entries() {
		paths[i] = e.Property
	}

	key := model.BestMatchingKey(t, paths)
	extra := make([]model.OrderingEntry, len(key.Properties))
	for i, p := range key.Properties {
		extra[i] = model.OrderingEntry{Property: p, Direction: model.Ascending}
	}
	return l.Concat(extra...)
}

func (l *List) String() string {
	s := ""
	for i, e := range l.Entries() {
		if i > 0 {
			s += ","
		}
		s += e.Direction.String() + e.Property.String()
	}
	return s
}
