package exec

import (
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
)

// RecordAccess is the embedder-supplied collaborator that lets the
// executor tree evaluate a filter and compare ordering properties
// against concrete record values. Spec §1 declares the predicate AST
// and the concrete record model as external collaborators with no
// evaluation contract of their own (the Filter API in §6 lists no
// "evaluate against a record" method); RecordAccess is that missing
// evaluation collaborator, supplied the same way StorageAccess is.
type RecordAccess[S any] interface {
	// Matches reports whether rec satisfies f, resolving any
	// placeholder atoms in f against values.
	Matches(rec S, f filter.Filter, values filter.FilterValues) (bool, error)

	// Compare orders a and b by the named property path: negative if
	// a < b, zero if equal, positive if a > b. Direction is applied by
	// the caller (Sorted, Union), not here.
	Compare(a, b S, path model.PropertyPath) int

	// Identity returns a comparable token identifying the record (e.g.
	// its primary key tuple rendered as a string) — used by Union to
	// suppress duplicates yielded by more than one child.
	Identity(rec S) any

	// Value returns the concrete value of the named property path on
	// rec, used by Joined to read a join's external-key value off an
	// outer row before binding it into the inner executor's filter.
	Value(rec S, path model.PropertyPath) any

	// Stash sets the named reference property on rec to outerRow and
	// returns the updated record, for writable join properties (spec
	// §4.7's "stashes the active outer record into the target record
	// so downstream consumers observe a fully populated graph").
	// Embedders with no writable join properties may return rec
	// unchanged.
	Stash(rec S, joinProp string, outerRow any) S
}
