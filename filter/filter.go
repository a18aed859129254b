// Package filter implements the predicate AST consumed by the planner: a
// boolean combination of property comparisons, represented as a tagged
// union (spec Design Notes: "a systems implementation should use a tagged
// union with exhaustive matching" in place of a visitor hierarchy).
package filter

import (
	"fmt"

	"github.com/corestash/queryplan/model"
)

// Op is a property comparison operator.
type Op int

const (
	EQ Op = iota
	NE
	LT
	LE
	GT
	GE
	EXISTS
)

func (o Op) String() string {
	switch o {
	case EQ:
		return "="
	case NE:
		return "!="
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	case EXISTS:
		return "exists"
	default:
		return "?"
	}
}

// negate returns the operator for NOT(this op). EXISTS has no negation in
// this predicate language; negating it is a usage error the caller must
// avoid (no scenario in this spec requires NOT EXISTS).
func (o Op) negate() (Op, bool) {
	switch o {
	case EQ:
		return NE, true
	case NE:
		return EQ, true
	case LT:
		return GE, true
	case LE:
		return GT, true
	case GT:
		return LE, true
	case GE:
		return LT, true
	default:
		return o, false
	}
}

// Kind tags the union's active variant.
type Kind uint8

const (
	KindOpen Kind = iota
	KindClosed
	KindProperty
	KindAnd
	KindOr
)

// Filter is an immutable node in the predicate tree. The zero value has
// KindOpen and behaves like Open(); use Open(), Closed(), PropertyConst,
// PropertyParam, Exists, And(...) and Or(...) to build one.
type Filter struct {
	kind Kind

	// KindProperty fields.
	path        model.PropertyPath
	op          Op
	placeholder string // bind-parameter name; "" means constant
	constant    any
	value       any  // resolved value once bound
	isBound     bool // true for constants immediately, true for placeholders after Bind

	// KindAnd / KindOr fields.
	children []Filter
}

// Open is the predicate that matches every record.
func Open() Filter { return Filter{kind: KindOpen} }

// Closed is the predicate that matches no record.
func Closed() Filter { return Filter{kind: KindClosed} }

// PropertyConst builds an atomic comparison against a literal value,
// already bound.
func PropertyConst(path model.PropertyPath, op Op, value any) Filter {
	return Filter{kind: KindProperty, path: path, op: op, constant: value, value: value, isBound: true}
}

// PropertyParam builds an atomic comparison against a named bind
// parameter, unbound until Bind is called with a matching FilterValues.
func PropertyParam(path model.PropertyPath, op Op, placeholder string) Filter {
	return Filter{kind: KindProperty, path: path, op: op, placeholder: placeholder}
}

// Exists builds an EXISTS atom — true iff the property has a value.
func Exists(path model.PropertyPath) Filter {
	return Filter{kind: KindProperty, path: path, op: EXISTS, isBound: true, constant: true, value: true}
}

// And combines filters conjunctively, flattening nested AND nodes.
func And(fs ...Filter) Filter {
	return combine(KindAnd, fs)
}

// Or combines filters disjunctively, flattening nested OR nodes.
func Or(fs ...Filter) Filter {
	return combine(KindOr, fs)
}

func combine(kind Kind, fs []Filter) Filter {
	children := make([]Filter, 0, len(fs))
	for _, f := range fs {
		if f.kind == kind {
			children = append(children, f.children...)
			continue
		}
		children = append(children, f)
	}
	if len(children) == 1 {
		return children[0]
	}
	return Filter{kind: kind, children: children}
}

// And is the instance-method form of And(f, other).
func (f Filter) And(other Filter) Filter { return And(f, other) }

// Or is the instance-method form of Or(f, other).
func (f Filter) Or(other Filter) Filter { return Or(f, other) }

// Kind reports the active tagged-union variant.
func (f Filter) Kind() Kind { return f.kind }

func (f Filter) IsOpen() bool   { return f.kind == KindOpen }
func (f Filter) IsClosed() bool { return f.kind == KindClosed }

// Path returns the property path of a KindProperty node.
func (f Filter) Path() model.PropertyPath { return f.path }

// Operator returns the comparison operator of a KindProperty node.
func (f Filter) Operator() Op { return f.op }

// Children returns the operands of a KindAnd/KindOr node.
func (f Filter) Children() []Filter { return f.children }

// Placeholder returns the bind-parameter name, or "" if this atom is a
// constant.
func (f Filter) Placeholder() string { return f.placeholder }

// IsBound reports whether every property atom in the tree has a resolved
// value — constants always do; placeholders do only after Bind.
func (f Filter) IsBound() bool {
	switch f.kind {
	case KindOpen, KindClosed:
		return true
	case KindProperty:
		return f.isBound
	case KindAnd, KindOr:
		for _, c := range f.children {
			if !c.IsBound() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Value returns the resolved value of a bound KindProperty atom.
func (f Filter) Value() (any, bool) {
	if f.kind != KindProperty || !f.isBound {
		return nil, false
	}
	return f.value, true
}

// Not negates the filter. AND/OR invert via De Morgan; property atoms
// invert their operator; open and closed swap.
func (f Filter) Not() Filter {
	switch f.kind {
	case KindOpen:
		return Closed()
	case KindClosed:
		return Open()
	case KindProperty:
		neg, ok := f.op.negate()
		if !ok {
			panic(fmt.Sprintf("filter: cannot negate operator %v", f.op))
		}
		nf := f
		nf.op = neg
		return nf
	case KindAnd:
		negated := make([]Filter, len(f.children))
		for i, c := range f.children {
			negated[i] = c.Not()
		}
		return Or(negated...)
	case KindOr:
		negated := make([]Filter, len(f.children))
		for i, c := range f.children {
			negated[i] = c.Not()
		}
		return And(negated...)
	default:
		panic("filter: Not on Filter of unknown kind")
	}
}

func (f Filter) String() string {
	switch f.kind {
	case KindOpen:
		return "true"
	case KindClosed:
		return "false"
	case KindProperty:
		if f.placeholder != "" {
			return fmt.Sprintf("%s %s ?%s", f.path, f.op, f.placeholder)
		}
		return fmt.Sprintf("%s %s %v", f.path, f.op, f.constant)
	case KindAnd:
		return joinChildren(f.children, " AND ")
	case KindOr:
		return joinChildren(f.children, " OR ")
	default:
		return "<invalid filter>"
	}
}

func joinChildren(children []Filter, sep string) string {
	s := ""
	for i, c := range children {
		if i > 0 {
			s += sep
		}
		s += "(" + c.String() + ")"
	}
	return s
}
