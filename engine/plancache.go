package engine

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/internal/qmetrics"
)

// planCacheEntry is one cached executor tree, stamped with a unique ID
// (spec §9 "Plan cache"). The ID is returned by get and put only; the
// engine does not use it, and PrintPlan output and logs do not include it.
type planCacheEntry[S any] struct {
	id      uuid.UUID
	node    exec.Node[S]
	builtAt time.Time
}

// planCache is the engine's filter→(ordering|hints)→executor cache (spec
// §5, §9). Entries are held strongly, not through weak pointers (unlike
// internal/intern's tables), so aging out under memory pressure is approximated
// with a bounded LRU plus an independent TTL sweep: capacity bounds
// memory the way a soft-reference collector would under pressure, and
// the TTL bounds staleness the way a weak-reference key would once its
// filter object is no longer reachable elsewhere. Documented trade-off,
// not a literal port.
type planCache[S any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	metrics  *qmetrics.Registry
}

type cacheNode[S any] struct {
	key   string
	entry *planCacheEntry[S]
}

func newPlanCache[S any](capacity int, ttl time.Duration, metrics *qmetrics.Registry) *planCache[S] {
	return &planCache[S]{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		metrics:  metrics,
	}
}

func (c *planCache[S]) get(key string) (exec.Node[S], uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.metrics.PlanCacheMisses.Inc()
		return nil, uuid.UUID{}, false
	}
	cn := el.Value.(*cacheNode[S])
	if c.ttl > 0 && time.Since(cn.entry.builtAt) > c.ttl {
		c.order.Remove(el)
		delete(c.entries, key)
		c.metrics.PlanCacheSize.Dec()
		c.metrics.PlanCacheMisses.Inc()
		return nil, uuid.UUID{}, false
	}

	c.order.MoveToFront(el)
	c.metrics.PlanCacheHits.Inc()
	return cn.entry.node, cn.entry.id, true
}

func (c *planCache[S]) put(key string, node exec.Node[S]) uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.New()
	entry := &planCacheEntry[S]{id: id, node: node, builtAt: time.Now()}

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheNode[S]).entry = entry
		c.order.MoveToFront(el)
		return id
	}

	el := c.order.PushFront(&cacheNode[S]{key: key, entry: entry})
	c.entries[key] = el
	c.metrics.PlanCacheSize.Inc()

	for c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheNode[S]).key)
		c.metrics.PlanCacheSize.Dec()
	}

	return id
}

// clear drops every cached entry, called when a cachebus.Invalidate
// message arrives for this cache's record type (the whole cache belongs
// to one type per QueryEngine instance, so invalidation is all-or-
// nothing).
func (c *planCache[S]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.PlanCacheSize.Sub(float64(c.order.Len()))
	c.entries = make(map[string]*list.Element)
	c.order = list.New()
}

func (c *planCache[S]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
