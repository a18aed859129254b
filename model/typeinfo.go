package model

// OrderingEntry is a (property path, direction) pair, the atomic unit of
// both an index's declared property order and a caller's requested sort.
type OrderingEntry struct {
	Property  PropertyPath
	Direction Direction
}

// IndexDescriptor describes one secondary (or primary) index available on
// a record type: an ordered sequence of properties with per-position
// direction, plus the two flags the scoring functions key off of.
type IndexDescriptor struct {
	Name       string
	Properties []OrderingEntry
	Unique     bool
	Clustered  bool
}

// Len is the number of indexed positions.
func (d IndexDescriptor) Len() int { return len(d.Properties) }

// PositionOf returns the index position (0-based) holding this property,
// or -1 if the property isn't part of the index.
func (d IndexDescriptor) PositionOf(path PropertyPath) int {
	for i, e := range d.Properties {
		if e.Property.Equal(path) {
			return i
		}
	}
	return -1
}

// WithPrefix returns a new descriptor whose every property path is
// prefixed by hops — used by the join planner to project a foreign
// index's shape into the querying type's namespace as a "virtual index".
func (d IndexDescriptor) WithPrefix(name string, hops ...string) IndexDescriptor {
	props := make([]OrderingEntry, len(d.Properties))
	for i, e := range d.Properties {
		props[i] = OrderingEntry{Property: e.Property.WithPrefix(hops...), Direction: e.Direction}
	}
	return IndexDescriptor{Name: name, Properties: props, Unique: d.Unique, Clustered: d.Clustered}
}

// KeyDescriptor names a uniqueness constraint: the primary key or an
// alternate key, each a set of property paths.
type KeyDescriptor struct {
	Name       string
	Properties []PropertyPath
	Primary    bool
}

// ContainedIn reports whether every property of the key appears in the
// given set of property paths (used to test whether an ordering is a
// "total ordering": its property set contains all of some key).
func (k KeyDescriptor) ContainedIn(paths []PropertyPath) bool {
	for _, want := range k.Properties {
		found := false
		for _, have := range paths {
			if want.Equal(have) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// RefEquality is one "internal property == external property" clause
// that defines a reference (join) property.
type RefEquality struct {
	Internal PropertyPath
	External PropertyPath
}

// ReferenceProperty associates a record of type S with a record of
// another type via one or more internal/external property equalities.
type ReferenceProperty struct {
	Name       string
	TargetType string
	Equalities []RefEquality
	OuterJoin  bool
	// Writable, when true, means the join executor may stash the
	// resolved outer record into this property so downstream consumers
	// observe a fully populated graph (spec §4.7, Joined executor).
	Writable bool
}

// TypeInfo is the record-introspection contract the planner consumes. An
// embedder supplies one implementation per record type; the core never
// constructs record values itself.
type TypeInfo interface {
	Name() string
	PrimaryKey() KeyDescriptor
	AlternateKeys() []KeyDescriptor
	Indexes() []IndexDescriptor
	References() map[string]ReferenceProperty
	HasProperty(path PropertyPath) bool
}

// AllKeys returns the primary key followed by every alternate key.
func AllKeys(t TypeInfo) []KeyDescriptor {
	keys := make([]KeyDescriptor, 0, 1+len(t.AlternateKeys()))
	keys = append(keys, t.PrimaryKey())
	keys = append(keys, t.AlternateKeys()...)
	return keys
}

// BestMatchingKey returns the key (primary or alternate) from t whose
// property set is contained in paths, preferring the primary key, then
// the alternate key with the most properties covered. Used by the union
// analyzer's total-ordering enforcement (spec §4.6 step 5) when it must
// pick which key to append to a non-total requested ordering: a key
// already mostly present in the requested properties needs fewer new
// sort columns appended to become total.
func BestMatchingKey(t TypeInfo, paths []PropertyPath) KeyDescriptor {
	pk := t.PrimaryKey()
	if pk.ContainedIn(paths) {
		return pk
	}

	best := pk
	bestCovered := coveredCount(pk, paths)
	for _, k := range t.AlternateKeys() {
		if k.ContainedIn(paths) {
			return k
		}
		if c := coveredCount(k, paths); c > bestCovered {
			best, bestCovered = k, c
		}
	}
	return best
}

func coveredCount(k KeyDescriptor, paths []PropertyPath) int {
	n := 0
	for _, want := range k.Properties {
		for _, have := range paths {
			if want.Equal(have) {
				n++
				break
			}
		}
	}
	return n
}
