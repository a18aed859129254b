// Package qmetrics exposes the Prometheus instrumentation surface for
// the planning core: how often plans are built vs served from cache, how
// long planning and fetch take, and how many subplans a union assembles.
package qmetrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every metric the core emits, bound to one underlying
// prometheus.Registry.
type Registry struct {
	PlansBuiltTotal   *prometheus.CounterVec
	PlanCacheHits     prometheus.Counter
	PlanCacheMisses    prometheus.Counter
	PlanCacheSize      prometheus.Gauge
	PlanBuildDuration *prometheus.HistogramVec

	FetchDuration    *prometheus.HistogramVec
	FetchErrorsTotal *prometheus.CounterVec

	UnionSubplansTotal prometheus.Histogram
	IndexScoredTotal   *prometheus.CounterVec

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// Default returns the process-wide registry, built on first use against a
// fresh prometheus.Registry (not prometheus.DefaultRegisterer).
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = New(prometheus.NewRegistry())
	})
	return defaultRegistry
}

// New builds a Registry bound to reg.
func New(reg *prometheus.Registry) *Registry {
	r := &Registry{registry: reg}
	r.initMetrics()
	return r
}

// Gatherer exposes the underlying prometheus.Registry for an HTTP
// /metrics handler.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

func (r *Registry) initMetrics() {
	r.PlansBuiltTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "queryplan_plans_built_total",
			Help: "Total number of executor plans constructed (cache misses).",
		},
		[]string{"record_type"},
	)

	r.PlanCacheHits = promauto.With(r.registry).NewCounter(prometheus.CounterOpts{
		Name: "queryplan_plan_cache_hits_total",
		Help: "Total number of plan-cache lookups that found a live entry.",
	})

	r.PlanCacheMisses = promauto.With(r.registry).NewCounter(prometheus.CounterOpts{
		Name: "queryplan_plan_cache_misses_total",
		Help: "Total number of plan-cache lookups that required a build.",
	})

	r.PlanCacheSize = promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{
		Name: "queryplan_plan_cache_size",
		Help: "Current number of live entries in the plan cache.",
	})

	r.PlanBuildDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "queryplan_plan_build_duration_seconds",
			Help:    "Time spent analyzing a (filter, ordering) pair into an executor tree.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"record_type"},
	)

	r.FetchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "queryplan_fetch_duration_seconds",
			Help:    "Time spent opening a query's cursor (the executor tree's Fetch call).",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"record_type"},
	)

	r.FetchErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "queryplan_fetch_errors_total",
			Help: "Total fetch/persist errors propagated from storage.",
		},
		[]string{"record_type", "kind"},
	)

	r.UnionSubplansTotal = promauto.With(r.registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "queryplan_union_subplans",
		Help:    "Number of subplans a union analysis settles on after merge and collapse.",
		Buckets: []float64{1, 2, 3, 5, 10, 20},
	})

	r.IndexScoredTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "queryplan_index_scored_total",
			Help: "Total number of (index, conjunct) scoring evaluations performed.",
		},
		[]string{"record_type", "origin"},
	)
}
