// Package intern implements a weakly-referenced structural intern table.
//
// OrderingList and the PropertyFilterList memo share the same shape: a
// key derived from a structural hash, a value that is expensive to
// rebuild but cheap to recompute, and a requirement that entries age out
// under memory pressure rather than pin memory forever. Table[K, V] is
// that shape, built on weak.Pointer so the garbage collector — not an LRU
// clock — decides when an entry is reclaimed. The QueryEngine plan cache
// does not use Table; it is a bounded LRU with a TTL (engine/plancache.go).
package intern

import (
	"runtime"
	"sync"
	"weak"
)

// Table interns values of type V under keys of type K. Values are held
// only weakly: once nothing else in the program keeps the value alive,
// the entry is removed from the table on the next GC cycle.
type Table[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]weak.Pointer[V]
}

// NewTable creates an empty intern table.
func NewTable[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{m: make(map[K]weak.Pointer[V])}
}

// Intern returns the table's existing value for key, or calls create to
// build one and stores it. Two calls with the same key return the same
// *V by pointer identity as long as the first value hasn't been collected
// — this is what lets callers use == instead of deep equality.
func (t *Table[K, V]) Intern(key K, create func() *V) *V {
	t.mu.Lock()
	defer t.mu.Unlock()

	if wp, ok := t.m[key]; ok {
		if v := wp.Value(); v != nil {
			return v
		}
	}

	v := create()
	t.m[key] = weak.Make(v)
	runtime.AddCleanup(v, t.evictIfDead, key)
	return v
}

// Len reports the number of live entries. It is not exact: an entry whose
// value has been collected but whose cleanup hasn't run yet still counts.
func (t *Table[K, V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.m)
}

func (t *Table[K, V]) evictIfDead(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if wp, ok := t.m[key]; ok && wp.Value() == nil {
		delete(t.m, key)
	}
}
