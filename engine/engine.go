// Package engine assembles the analyzer and executor packages into the
// public query surface: QueryEngine owns the plan cache and metrics,
// StandardQuery is the bound, fetchable query object callers hold.
package engine

import (
	"time"

	"github.com/corestash/queryplan/analyzer"
	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/filter"
	"github.com/corestash/queryplan/internal/cachebus"
	"github.com/corestash/queryplan/internal/obslog"
	"github.com/corestash/queryplan/internal/qmetrics"
	"github.com/corestash/queryplan/model"
	"github.com/corestash/queryplan/ordering"
	"github.com/corestash/queryplan/scoring"
)

// Config tunes one QueryEngine instance.
type Config struct {
	// PlanCacheCapacity bounds the number of live plan-cache entries; 0
	// means unbounded.
	PlanCacheCapacity int
	// PlanCacheTTL is the maximum age of a cache entry before it is
	// treated as a miss and rebuilt; 0 disables TTL aging.
	PlanCacheTTL time.Duration
	// Foreign supplies ForeignPlanner lookups for join planning; nil
	// disables cross-type joins for this engine.
	Foreign analyzer.ForeignCatalog
	// Metrics is the Prometheus registry this engine reports to;
	// defaults to qmetrics.Default().
	Metrics *qmetrics.Registry
	// Logger defaults to a NopLogger.
	Logger obslog.Logger
	// InvalidationAddr, if set, subscribes this engine to a cachebus
	// publisher at that address so another engine's catalog changes
	// clear this engine's plan cache too.
	InvalidationAddr string
}

// QueryEngine is the public entry point for one record type: it owns the
// analyzer pair, the plan cache, and the embedder's storage/record
// collaborators.
type QueryEngine[S any] struct {
	typeInfo model.TypeInfo
	support  exec.StorageAccess[S]
	access   exec.RecordAccess[S]

	union   *analyzer.UnionQueryAnalyzer[S]
	cache   *planCache[S]
	metrics *qmetrics.Registry
	logger  obslog.Logger
	sub     *cachebus.Subscriber
}

// New builds a QueryEngine for one record type.
func New[S any](typeInfo model.TypeInfo, support exec.StorageAccess[S], access exec.RecordAccess[S], cfg Config) (*QueryEngine[S], error) {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = qmetrics.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = obslog.NewNopLogger()
	}

	indexed := analyzer.New[S](typeInfo, support, access, cfg.Foreign, logger, metrics)
	union := analyzer.NewUnion[S](typeInfo, support, access, indexed, logger, metrics)

	e := &QueryEngine[S]{
		typeInfo: typeInfo,
		support:  support,
		access:   access,
		union:    union,
		cache:    newPlanCache[S](cfg.PlanCacheCapacity, cfg.PlanCacheTTL, metrics),
		metrics:  metrics,
		logger:   logger,
	}

	if cfg.InvalidationAddr != "" {
		sub, err := cachebus.NewSubscriber(cfg.InvalidationAddr)
		if err != nil {
			return nil, err
		}
		e.sub = sub
		go func() {
			_ = sub.Run(func(inv cachebus.Invalidate) {
				if inv.RecordType == typeInfo.Name() {
					e.cache.clear()
				}
			})
		}()
	}

	return e, nil
}

// Close releases the engine's cachebus subscription, if any.
func (e *QueryEngine[S]) Close() error {
	if e.sub == nil {
		return nil
	}
	return e.sub.Close()
}

// Query starts a new StandardQuery bound to f and requested (either may
// be nil/zero-value; f defaults to Open, requested to an empty list).
func (e *QueryEngine[S]) Query(f filter.Filter, requested *ordering.List, hints scoring.Hints) *StandardQuery[S] {
	if requested == nil {
		requested = ordering.Of(e.typeInfo.Name())
	}
	return &StandardQuery[S]{
		engine:    e,
		filter:    f,
		requested: requested,
		hints:     hints,
		values:    f.InitialFilterValues(),
	}
}

func (e *QueryEngine[S]) planKey(f filter.Filter, requested *ordering.List, hints scoring.Hints) string {
	key := f.String() + "||" + requested.String()
	if hints.ConsumeSlice {
		key += "||slice"
	}
	return key
}

// plan returns the cached executor tree for (f, requested, hints),
// building and caching one on a miss.
func (e *QueryEngine[S]) plan(f filter.Filter, requested *ordering.List, hints scoring.Hints) (exec.Node[S], error) {
	key := e.planKey(f, requested, hints)
	if node, _, ok := e.cache.get(key); ok {
		return node, nil
	}

	timer := obslog.StartTimer(e.logger, "query plan built", obslog.RecordType(e.typeInfo.Name()))
	start := time.Now()
	node, err := e.union.Plan(f, requested, hints)
	e.metrics.PlanBuildDuration.WithLabelValues(e.typeInfo.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	timer.End()

	e.metrics.PlansBuiltTotal.WithLabelValues(e.typeInfo.Name()).Inc()
	e.cache.put(key, node)
	return node, nil
}
