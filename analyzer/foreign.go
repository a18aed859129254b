// Package analyzer implements the indexed-query and union-query
// analyzers: the planner's decision procedures for which index (local
// or foreign) best serves one conjunct, and how to split, merge, and
// union a DNF-reduced filter across per-conjunct plans (spec §4.5, §4.6).
package analyzer

import (
	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
	"github.com/corestash/queryplan/scoring"
)

// ForeignPlan is the outcome of scoring a referenced type's indexes
// against a conjunct already translated into that type's own property
// namespace (spec §4.5 step 3). KeyMatch records whether the winning
// index is a key match, which determines whether the outer side of a
// Joined executor yields at most one row (spec §4.7's ordering rule).
type ForeignPlan struct {
	KeyMatch  bool
	Filter    filter.Filter
	Ordering  *ordering.List
	Score     scoring.Composite
	IndexName string
	Build     func() (exec.Node[any], error)
}

// ForeignPlanner scores and builds plans against one referenced record
// type. The join planner never instantiates another type's
// IndexedQueryAnalyzer directly — Go's generics have no existential
// "some type U" IndexedQueryAnalyzer[S] could reach for at runtime — so
// each reference property's target type supplies this type-erased
// facade instead, typically implemented by wrapping that type's own
// IndexedQueryAnalyzer[U] with Erase (see erase.go).
type ForeignPlanner interface {
	TypeInfo() model.TypeInfo
	Plan(conjunct filter.Filter, requested *ordering.List, hints scoring.Hints) (ForeignPlan, bool)
	RecordAccess() exec.RecordAccess[any]
}

// ForeignCatalog resolves a reference property's target type name to
// the ForeignPlanner that can plan queries against it. An embedder
// registers one entry per record type its catalog exposes as a join
// target.
type ForeignCatalog interface {
	Planner(targetType string) (ForeignPlanner, bool)
}

// StaticForeignCatalog is a plain map-backed ForeignCatalog, sufficient
// for embedders with a fixed, known set of record types.
type StaticForeignCatalog map[string]ForeignPlanner

func (c StaticForeignCatalog) Planner(targetType string) (ForeignPlanner, bool) {
	p, ok := c[targetType]
	return p, ok
}
