package engine

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/internal/qmetrics"
	"github.com/corestash/queryplan/internal/testsupport"
)

func newTestCache(capacity int, ttl time.Duration) *planCache[testsupport.Widget] {
	return newPlanCache[testsupport.Widget](capacity, ttl, qmetrics.New(prometheus.NewRegistry()))
}

func sampleNode() exec.Node[testsupport.Widget] {
	store := testsupport.NewStore(testsupport.NewTypeInfo("Widget"), nil)
	return exec.NewFullScan[testsupport.Widget](store)
}

func TestPlanCacheHitReturnsSameNode(t *testing.T) {
	c := newTestCache(0, 0)
	node := sampleNode()
	c.put("k", node)

	got, _, ok := c.get("k")
	require.True(t, ok)
	assert.Same(t, node, got)
}

func TestPlanCacheMissOnUnknownKey(t *testing.T) {
	c := newTestCache(0, 0)
	_, _, ok := c.get("nope")
	assert.False(t, ok)
}

func TestPlanCacheEvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	c := newTestCache(2, 0)
	c.put("a", sampleNode())
	c.put("b", sampleNode())
	// touch "a" so "b" becomes the least recently used
	_, _, _ = c.get("a")
	c.put("c", sampleNode())

	_, _, ok := c.get("b")
	assert.False(t, ok, "b should have been evicted")
	_, _, ok = c.get("a")
	assert.True(t, ok)
	_, _, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.len())
}

func TestPlanCacheExpiresEntriesPastTTL(t *testing.T) {
	c := newTestCache(0, time.Millisecond)
	c.put("k", sampleNode())
	time.Sleep(5 * time.Millisecond)

	_, _, ok := c.get("k")
	assert.False(t, ok)
}

func TestPlanCacheClearDropsEverything(t *testing.T) {
	c := newTestCache(0, 0)
	c.put("a", sampleNode())
	c.put("b", sampleNode())
	c.clear()
	assert.Equal(t, 0, c.len())
}
