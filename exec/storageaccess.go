// Package exec implements the executor tree the planner assembles:
// stateless operator nodes (FullScan, Key, Indexed, Filtered, Sorted,
// Union, Joined) that compose into a cursor-producing plan, plus the
// StorageAccess contract an embedder implements to supply records.
package exec

import (
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
)

// Boundary is a range endpoint's inclusivity.
type Boundary int

const (
	BoundaryOpen Boundary = iota
	BoundaryInclusive
	BoundaryExclusive
)

// Cursor streams records of type S. Next returns (zero, false, nil) at
// end of stream. Close must be called on every exit path — normal
// end-of-stream, early termination, or error.
type Cursor[S any] interface {
	Next() (S, bool, error)
	Close() error
}

// IndexEntryQuery is an opaque, storage-defined covering-index query
// object returned by StorageAccess.IndexEntryQuery and bound by the
// caller before being passed back to FetchFromIndexEntryQuery.
type IndexEntryQuery any

// BoundQuery is an IndexEntryQuery with its boundary parameters already
// applied; also opaque to the core.
type BoundQuery any

// SortBuffer accumulates records for Sorted, spilling to external
// storage when the in-memory strategy is unsuitable; storage chooses the
// concrete strategy (array-in-memory or external merge-sort).
type SortBuffer[S any] interface {
	Add(s S)
	Sorted(less func(a, b S) bool) Cursor[S]
	Close() error
}

// StorageAccess is the embedder-supplied contract the executor tree
// fetches records through (spec §6).
type StorageAccess[S any] interface {
	StorableType() model.TypeInfo
	AllIndexes() []model.IndexDescriptor

	// StorageDelegate returns a downstream plan passthrough for index,
	// when storage wants to short-circuit the core's own execution (e.g.
	// because it has a native query engine for that index).
	StorageDelegate(index model.IndexDescriptor) (Node[S], bool)

	// CountAll returns the natural-order record count, or -1 if unknown.
	CountAll() int64

	// FetchAll returns a cursor over every record in natural order.
	FetchAll() (Cursor[S], error)

	// FetchSubset returns a cursor scanning index, bound to
	// identityValues for its leading identity positions and the given
	// range boundary for the position immediately after.
	FetchSubset(index model.IndexDescriptor, identityValues []any,
		startBoundary Boundary, startValue any,
		endBoundary Boundary, endValue any,
		reverseRange, reverseOrder bool) (Cursor[S], error)

	// IndexEntryQuery returns a covering-index query object for index,
	// if storage supports checking remainder atoms off the index tuple
	// without fetching the base record.
	IndexEntryQuery(index model.IndexDescriptor) (IndexEntryQuery, bool)

	// FetchFromIndexEntryQuery executes a bound covering-index query.
	FetchFromIndexEntryQuery(index model.IndexDescriptor, bound BoundQuery) (Cursor[S], error)

	// CreateSortBuffer returns a new buffer for the Sorted executor.
	CreateSortBuffer() SortBuffer[S]
}

// Node is a stateless executor tree operator (spec §4.7). Every method
// is pure with respect to the node's own immutable fields; per-fetch
// state lives entirely in the returned Cursor.
type Node[S any] interface {
	Fetch(values filter.FilterValues) (Cursor[S], error)
	Count(values filter.FilterValues) (int64, error)
	Filter() filter.Filter
	Ordering() *ordering.List
	PrintPlan(indent int) string
}

// NativePrinter is implemented by nodes that can additionally render the
// storage-native form of their access path (e.g. a SQL fragment) for
// diagnostics.
type NativePrinter interface {
	PrintNative() string
}

// NativeRenderer is an optional capability a StorageAccess backend
// implements to describe its own access path in native form: the bound
// SQL fragment for storageadapters/pgstore, or the object-key prefix for
// storageadapters/s3store. index and bound are the zero value for a plain
// FullScan, which has no index to describe. FullScan, FullScanIndexed and
// Indexed implement NativePrinter unconditionally and type-assert support
// against NativeRenderer themselves, returning "" when storage doesn't
// implement it — callers read an empty string as "no native form", not the
// type assertion. The other executor nodes do not implement NativePrinter.
type NativeRenderer interface {
	RenderNative(index model.IndexDescriptor, bound IndexBound, reverseOrder bool) string
}
