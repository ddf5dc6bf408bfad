package edges

import (
	"time"

	"github.com/samokhinv/connectome-go/backend"
	"github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// Cache is the edge that makes the whole engine worth building: its hash
// passes the child's hash through unchanged, but its evaluate phase first
// checks store for that hash — on a hit, the entire parent subtree is
// never evaluated at all (ComputeMask returns an empty mask); on a miss,
// the parent's value is fetched, stored, and returned (spec.md §4.3, the
// "cache transparency" Testable Property 3: the graph's result never
// depends on whether this store happens to already hold the value).
//
// A non-zero TTL is honored only when Store also implements
// backend.TTLStore; a plain Store silently keeps entries until evicted or
// overwritten, same as TTL == 0.
type Cache struct {
	Store   backend.Store
	Metrics graph.Metrics
	TTL     time.Duration
}

func (Cache) Arity() int     { return 1 }
func (Cache) UsesHash() bool { return false }

func (Cache) PropagateHash(parentHashes []nodehash.Hash) nodehash.Hash {
	return parentHashes[0]
}

func (c Cache) ComputeMask(parentHashes []nodehash.Hash, output nodehash.Hash) graph.Mask {
	if c.Store.Contains(output.Hex()) {
		return nil
	}
	return graph.FullMask(1)
}

func (c Cache) EvaluateMasked(args []any, mask graph.Mask, output nodehash.Hash) (any, error) {
	key := output.Hex()
	if len(args) == 0 {
		v, ok, err := c.Store.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &IdentifierError{Op: "cache lookup", Key: key}
		}
		c.metrics().CacheHit(key)
		return v, nil
	}
	c.metrics().CacheMiss(key)
	v := args[0]
	if graph.IsNothing(v) {
		return v, nil
	}
	if err := c.store(key, v); err != nil {
		return nil, err
	}
	return v, nil
}

// store writes v under key, through SetWithTTL when both c.TTL is set and
// the Store opts into backend.TTLStore, otherwise through a plain Set.
func (c Cache) store(key string, v any) error {
	if c.TTL > 0 {
		if ttlStore, ok := c.Store.(backend.TTLStore); ok {
			return ttlStore.SetWithTTL(key, v, c.TTL)
		}
	}
	return c.Store.Set(key, v)
}

func (c Cache) metrics() graph.Metrics {
	if c.Metrics == nil {
		return graph.NoopMetrics{}
	}
	return c.Metrics
}

func (Cache) HashGraph(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromHashNodes(nodehash.KindFunction, parentHashes...)
}

// NewCache wraps a Cache edge over store as a graph.Edge.
func NewCache(store backend.Store, metrics graph.Metrics) graph.Edge {
	return graph.FromMaskEdge(Cache{Store: store, Metrics: metrics})
}

// NewCacheWithTTL is NewCache plus a per-entry expiration, honored when
// store implements backend.TTLStore (e.g. *backend.Ram) and ignored
// otherwise.
func NewCacheWithTTL(store backend.Store, metrics graph.Metrics, ttl time.Duration) graph.Edge {
	return graph.FromMaskEdge(Cache{Store: store, Metrics: metrics, TTL: ttl})
}
