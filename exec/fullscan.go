package exec

import (
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
)

// FullScan opens a cursor over every record of the type, in whatever
// order storage's natural iteration produces (none advertised).
type FullScan[S any] struct {
	support StorageAccess[S]
}

// NewFullScan builds a FullScan node.
func NewFullScan[S any](support StorageAccess[S]) *FullScan[S] {
	return &FullScan[S]{support: support}
}

func (n *FullScan[S]) Fetch(filter.FilterValues) (Cursor[S], error) { return n.support.FetchAll() }

func (n *FullScan[S]) Count(filter.FilterValues) (int64, error) {
	if c := n.support.CountAll(); c >= 0 {
		return c, nil
	}
	return drainCount(n.support)
}

func (n *FullScan[S]) Filter() filter.Filter      { return filter.Open() }
func (n *FullScan[S]) Ordering() *ordering.List   { return nil }
func (n *FullScan[S]) PrintPlan(indent int) string { return pad(indent) + "full scan: " + n.support.StorableType().Name() }

// PrintNative renders the unbound scan in storage-native form when
// support implements NativeRenderer (e.g. storageadapters/s3store's
// bucket/prefix, which has no index to bind against).
func (n *FullScan[S]) PrintNative() string {
	renderer, ok := n.support.(NativeRenderer)
	if !ok {
		return ""
	}
	return renderer.RenderNative(model.IndexDescriptor{}, IndexBound{}, false)
}

func drainCount[S any](support StorageAccess[S]) (int64, error) {
	cur, err := support.FetchAll()
	if err != nil {
		return 0, err
	}
	defer cur.Close()
	var n int64
	for {
		_, ok, err := cur.Next()
		if err != nil {
			return 0, err
		}
		if !ok {
			return n, nil
		}
		n++
	}
}

// FullScanIndexed opens a cursor scanning index in its natural
// (ascending, declared) order — used when no filter narrows the
// records but the requested ordering matches an index's declared shape
// for free.
type FullScanIndexed[S any] struct {
	index   model.IndexDescriptor
	support StorageAccess[S]
	order   *ordering.List
}

// NewFullScanIndexed builds a FullScanIndexed node.
func NewFullScanIndexed[S any](index model.IndexDescriptor, support StorageAccess[S]) *FullScanIndexed[S] {
	entries := make([]model.OrderingEntry, index.Len())
	copy(entries, index.Properties)
	return &FullScanIndexed[S]{index: index, support: support, order: ordering.Of(support.StorableType().Name(), entries...)}
}

func (n *FullScanIndexed[S]) Fetch(filter.FilterValues) (Cursor[S], error) {
	return n.support.FetchSubset(n.index, nil, BoundaryOpen, nil, BoundaryOpen, nil, false, false)
}

func (n *FullScanIndexed[S]) Count(filter.FilterValues) (int64, error) {
	if c := n.support.CountAll(); c >= 0 {
		return c, nil
	}
	cur, err := n.Fetch(filter.NewFilterValues())
	if err != nil {
		return 0, err
	}
	defer cur.Close()
	var count int64
	for {
		_, ok, err := cur.Next()
		if err != nil {
			return 0, err
		}
		if !ok {
			return count, nil
		}
		count++
	}
}

func (n *FullScanIndexed[S]) Filter() filter.Filter    { return filter.Open() }
func (n *FullScanIndexed[S]) Ordering() *ordering.List { return n.order }
func (n *FullScanIndexed[S]) PrintPlan(indent int) string {
	return pad(indent) + "full index scan: " + n.index.Name
}

// PrintNative renders the unbound index scan in storage-native form when
// support implements NativeRenderer.
func (n *FullScanIndexed[S]) PrintNative() string {
	renderer, ok := n.support.(NativeRenderer)
	if !ok {
		return ""
	}
	return renderer.RenderNative(n.index, IndexBound{StartBoundary: BoundaryOpen, EndBoundary: BoundaryOpen}, false)
}

func pad(indent int) string {
	s := ""
	for i := 0; i < indent; i++ {
		s += "  "
	}
	return s
}
