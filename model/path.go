// Package model declares the record-type introspection contract the
// planning core consumes. It owns no concrete record model of its own:
// TypeInfo, PropertyPath, IndexDescriptor and the rest describe what an
// embedder's catalog must expose, not how it stores anything.
package model

import "strings"

// Direction is the sort direction of an ordering entry or an index
// position.
type Direction int

const (
	Unspecified Direction = iota
	Ascending
	Descending
)

// Reverse flips Ascending/Descending; Unspecified is its own reverse.
func (d Direction) Reverse() Direction {
	switch d {
	case Ascending:
		return Descending
	case Descending:
		return Ascending
	default:
		return Unspecified
	}
}

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "+"
	case Descending:
		return "-"
	default:
		return "?"
	}
}

// PropertyPath is a chained property reference "a.b.c". A zero-length
// tail denotes a direct property. Traversal hops before the last one must
// name reference properties on intermediate types; the last hop names a
// scalar (or, inside a filter over the referenced type, another scalar).
type PropertyPath struct {
	hops []string
}

// NewPropertyPath builds a path from its dotted hops, e.g.
// NewPropertyPath("order", "customerId") for "order.customerId".
func NewPropertyPath(hops ...string) PropertyPath {
	cp := make([]string, len(hops))
	copy(cp, hops)
	return PropertyPath{hops: cp}
}

// ParsePropertyPath splits a dotted string into a PropertyPath.
func ParsePropertyPath(s string) PropertyPath {
	if s == "" {
		return PropertyPath{}
	}
	return NewPropertyPath(strings.Split(s, ".")...)
}

// Direct reports whether the path has no chain hops.
func (p PropertyPath) Direct() bool { return len(p.hops) <= 1 }

// Chained reports whether traversal crosses at least one reference
// property before reaching the leaf.
func (p PropertyPath) Chained() bool { return len(p.hops) > 1 }

// Len returns the number of hops, including the leaf.
func (p PropertyPath) Len() int { return len(p.hops) }

// FirstHop returns the first hop's name (the reference property to
// traverse first) and true, or "" and false if the path is direct.
func (p PropertyPath) FirstHop() (string, bool) {
	if len(p.hops) < 2 {
		return "", false
	}
	return p.hops[0], true
}

// Leaf returns the final hop, the scalar property name.
func (p PropertyPath) Leaf() string {
	if len(p.hops) == 0 {
		return ""
	}
	return p.hops[len(p.hops)-1]
}

// Prefix returns the chain without its last hop — the reference property
// chain leading to, but not including, the leaf.
func (p PropertyPath) Prefix() PropertyPath {
	if len(p.hops) <= 1 {
		return PropertyPath{}
	}
	return NewPropertyPath(p.hops[:len(p.hops)-1]...)
}

// TailFrom drops the first hop, returning the remaining path as seen from
// the referenced type's namespace. A one-hop path yields the empty path
// and an empty path panics; callers must check FirstHop first.
func (p PropertyPath) TailFrom() PropertyPath {
	return NewPropertyPath(p.hops[1:]...)
}

// WithPrefix prepends hops onto the path — used by the join planner to
// translate a property path on a referenced type into a virtual index
// position on the querying type.
func (p PropertyPath) WithPrefix(hops ...string) PropertyPath {
	joined := make([]string, 0, len(hops)+len(p.hops))
	joined = append(joined, hops...)
	joined = append(joined, p.hops...)
	return PropertyPath{hops: joined}
}

// Equal reports structural equality.
func (p PropertyPath) Equal(o PropertyPath) bool {
	if len(p.hops) != len(o.hops) {
		return false
	}
	for i := range p.hops {
		if p.hops[i] != o.hops[i] {
			return false
		}
	}
	return true
}

func (p PropertyPath) String() string { return strings.Join(p.hops, ".") }

// IsZero reports whether the path names nothing.
func (p PropertyPath) IsZero() bool { return len(p.hops) == 0 }
