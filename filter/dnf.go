package filter

// Reduce applies algebraic simplifications: AND/OR absorb Open/Closed
// identities, single-child AND/OR collapse to the child, and nested
// AND-of-AND / OR-of-OR flatten (the constructors already flatten on
// build, so Reduce mainly handles identities introduced by Bind, Not, or
// a caller-supplied tree built without the package constructors).
func (f Filter) Reduce() Filter {
	switch f.kind {
	case KindOpen, KindClosed, KindProperty:
		return f
	case KindAnd:
		reduced := make([]Filter, 0, len(f.children))
		for _, c := range f.children {
			rc := c.Reduce()
			if rc.IsClosed() {
				return Closed()
			}
			if rc.IsOpen() {
				continue
			}
			if rc.kind == KindAnd {
				reduced = append(reduced, rc.children...)
				continue
			}
			reduced = append(reduced, rc)
		}
		if len(reduced) == 0 {
			return Open()
		}
		if len(reduced) == 1 {
			return reduced[0]
		}
		return Filter{kind: KindAnd, children: reduced}
	case KindOr:
		reduced := make([]Filter, 0, len(f.children))
		for _, c := range f.children {
			rc := c.Reduce()
			if rc.IsOpen() {
				return Open()
			}
			if rc.IsClosed() {
				continue
			}
			if rc.kind == KindOr {
				reduced = append(reduced, rc.children...)
				continue
			}
			reduced = append(reduced, rc)
		}
		if len(reduced) == 0 {
			return Closed()
		}
		if len(reduced) == 1 {
			return reduced[0]
		}
		return Filter{kind: KindOr, children: reduced}
	default:
		return f
	}
}

// DisjunctiveNormalFormSplit reduces the filter and returns its OR-free
// conjuncts: filters containing only AND/property/open nodes such that
// the OR of all returned conjuncts is equivalent to f. A Closed filter
// (after reduction) yields no conjuncts — callers must special-case
// "handles nothing" before calling this, matching spec §8's "Filter that
// evaluates closed ⇒ plan is the always-empty executor".
func (f Filter) DisjunctiveNormalFormSplit() []Filter {
	return dnf(f.Reduce())
}

func dnf(f Filter) []Filter {
	switch f.kind {
	case KindOpen:
		return []Filter{f}
	case KindClosed:
		return nil
	case KindProperty:
		return []Filter{f}
	case KindOr:
		var out []Filter
		for _, c := range f.children {
			out = append(out, dnf(c)...)
		}
		return out
	case KindAnd:
		// Cross-product the DNF of each child.
		combos := [][]Filter{{}}
		for _, c := range f.children {
			childConjuncts := dnf(c)
			if len(childConjuncts) == 0 {
				// A child that's unsatisfiable makes the whole AND
				// unsatisfiable.
				return nil
			}
			var next [][]Filter
			for _, combo := range combos {
				for _, cj := range childConjuncts {
					nc := make([]Filter, len(combo), len(combo)+1)
					copy(nc, combo)
					nc = append(nc, cj)
					next = append(next, nc)
				}
			}
			combos = next
		}
		out := make([]Filter, 0, len(combos))
		for _, combo := range combos {
			out = append(out, And(combo...).Reduce())
		}
		return out
	default:
		return nil
	}
}

// ConjunctiveNormalFormSplit returns f's AND-free (OR-only) disjuncts such
// that the AND of all returned disjuncts is equivalent to f. It is the
// De Morgan dual of DisjunctiveNormalFormSplit: negate, take the DNF, and
// negate each conjunct back.
func (f Filter) ConjunctiveNormalFormSplit() []Filter {
	negatedConjuncts := f.Not().DisjunctiveNormalFormSplit()
	out := make([]Filter, len(negatedConjuncts))
	for i, c := range negatedConjuncts {
		out[i] = c.Not()
	}
	return out
}

// NotJoinedFrom returns the AND-only conjunct's atoms whose property path
// does NOT chain through the named reference property as its first hop —
// the portion of a conjunct the local (non-foreign) index candidates can
// see. f must be OR-free.
func (f Filter) NotJoinedFrom(prop string) Filter {
	return filterAtoms(f, func(leaf Filter) bool {
		hop, chained := leaf.path.FirstHop()
		return !chained || hop != prop
	})
}

// AsJoinedFrom returns the AND-only conjunct's atoms that DO chain
// through the named reference property, with that leading hop stripped
// so the result is expressed in the referenced type's own namespace —
// used to translate a conjunct across a join for virtual-index scoring.
func (f Filter) AsJoinedFrom(prop string) Filter {
	stripped := filterAtomsTransform(f, func(leaf Filter) (Filter, bool) {
		hop, chained := leaf.path.FirstHop()
		if !chained || hop != prop {
			return Filter{}, false
		}
		nf := leaf
		nf.path = leaf.path.TailFrom()
		return nf, true
	})
	return stripped
}

func filterAtoms(f Filter, keep func(leaf Filter) bool) Filter {
	switch f.kind {
	case KindOpen, KindClosed:
		return f
	case KindProperty:
		if keep(f) {
			return f
		}
		return Open()
	case KindAnd:
		kept := make([]Filter, 0, len(f.children))
		for _, c := range f.children {
			kept = append(kept, filterAtoms(c, keep))
		}
		return And(kept...).Reduce()
	default:
		// OR nodes are not expected in an AND-only conjunct; pass
		// through unchanged rather than silently discard structure.
		return f
	}
}

func filterAtomsTransform(f Filter, transform func(leaf Filter) (Filter, bool)) Filter {
	switch f.kind {
	case KindOpen, KindClosed:
		return Open()
	case KindProperty:
		if nf, ok := transform(f); ok {
			return nf
		}
		return Open()
	case KindAnd:
		kept := make([]Filter, 0, len(f.children))
		for _, c := range f.children {
			kept = append(kept, filterAtomsTransform(c, transform))
		}
		return And(kept...).Reduce()
	default:
		return Open()
	}
}
