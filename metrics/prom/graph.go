package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/samokhinv/connectome-go/graph"
)

// GraphAdapter implements graph.Metrics and exports Prometheus counters for
// evaluator-level events: hash/value computation, cache transparency, and
// Locker contention. It is the graph-engine counterpart of Adapter, which
// instruments the in-memory cache package directly.
type GraphAdapter struct {
	hashesComputed  *prometheus.CounterVec
	valuesComputed  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	contentions     *prometheus.CounterVec
}

// NewGraphAdapter constructs a Prometheus metrics adapter for a graph.Graph.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func NewGraphAdapter(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *GraphAdapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &GraphAdapter{
		hashesComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hashes_computed_total",
			Help:        "Node hash phases actually executed, by node name",
			ConstLabels: constLabels,
		}, []string{"node"}),
		valuesComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "values_computed_total",
			Help:        "Node evaluate phases actually executed, by node name",
			ConstLabels: constLabels,
		}, []string{"node"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "cache_hits_total",
			Help:        "Cache edge store hits, by node name",
			ConstLabels: constLabels,
		}, []string{"node"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "cache_misses_total",
			Help:        "Cache edge store misses, by node name",
			ConstLabels: constLabels,
		}, []string{"node"}),
		contentions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "locker_contentions_total",
			Help:        "Locker reservation contention events, by key",
			ConstLabels: constLabels,
		}, []string{"key"}),
	}
	reg.MustRegister(a.hashesComputed, a.valuesComputed, a.cacheHits, a.cacheMisses, a.contentions)
	return a
}

func (a *GraphAdapter) HashComputed(node string)  { a.hashesComputed.WithLabelValues(node).Inc() }
func (a *GraphAdapter) ValueComputed(node string) { a.valuesComputed.WithLabelValues(node).Inc() }
func (a *GraphAdapter) CacheHit(node string)       { a.cacheHits.WithLabelValues(node).Inc() }
func (a *GraphAdapter) CacheMiss(node string)      { a.cacheMisses.WithLabelValues(node).Inc() }
func (a *GraphAdapter) Contention(key string)      { a.contentions.WithLabelValues(key).Inc() }

// Compile-time check: ensure GraphAdapter implements graph.Metrics.
var _ graph.Metrics = (*GraphAdapter)(nil)
