package filter

// Visitor receives the callback matching a node's kind when Accept is
// called on that node, so embedders can render or translate a filter
// without reaching into the tagged-union fields directly. Accept does not
// walk the tree itself; see Accept.
type Visitor interface {
	VisitOpen()
	VisitClosed()
	VisitProperty(f Filter)
	VisitAnd(children []Filter)
	VisitOr(children []Filter)
}

// Accept dispatches to the matching Visitor method for f's kind. AND/OR
// visitors receive the raw child slice; recursing into them (calling
// Accept on each child) is the visitor's own responsibility, mirroring
// how a hand-written switch over Kind would work.
func (f Filter) Accept(v Visitor) {
	switch f.kind {
	case KindOpen:
		v.VisitOpen()
	case KindClosed:
		v.VisitClosed()
	case KindProperty:
		v.VisitProperty(f)
	case KindAnd:
		v.VisitAnd(f.children)
	case KindOr:
		v.VisitOr(f.children)
	}
}

// WalkFunc is called for every property atom reached while Walk descends
// through And/Or nodes pre-order; a simpler alternative to implementing
// the full Visitor interface when only leaves matter.
type WalkFunc func(f Filter)

// Walk descends the filter, invoking fn for every property atom (leaf)
// it encounters. Open and Closed nodes are skipped.
func (f Filter) Walk(fn WalkFunc) {
	switch f.kind {
	case KindProperty:
		fn(f)
	case KindAnd, KindOr:
		for _, c := range f.children {
			c.Walk(fn)
		}
	}
}
