package graph

// Metrics receives evaluator events. Implementations must be safe for
// concurrent use; the default NoopMetrics discards everything. The
// metrics/prom package adapts this onto Prometheus collectors.
type Metrics interface {
	// HashComputed is called each time a TreeNode's hash phase actually
	// runs (as opposed to being served from the in-call memo); this can
	// happen more than once for the same node within one call.
	HashComputed(node string)
	// ValueComputed is called once per TreeNode whose evaluate phase
	// actually ran.
	ValueComputed(node string)
	// CacheHit/CacheMiss are called by backend.Store-backed Cache edges.
	CacheHit(node string)
	CacheMiss(node string)
	// Contention reports a txn.ContentionError for key; the evaluator and
	// the built-in edges do not call it.
	Contention(key string)
}

// NoopMetrics discards every event.
type NoopMetrics struct{}

func (NoopMetrics) HashComputed(string)  {}
func (NoopMetrics) ValueComputed(string) {}
func (NoopMetrics) CacheHit(string)      {}
func (NoopMetrics) CacheMiss(string)     {}
func (NoopMetrics) Contention(string)    {}

var _ Metrics = NoopMetrics{}
