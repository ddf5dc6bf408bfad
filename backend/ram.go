package backend

import (
	"context"
	"errors"
	"time"

	"github.com/samokhinv/connectome-go/cache"
	"github.com/samokhinv/connectome-go/locker"
	"github.com/samokhinv/connectome-go/txn"
)

// Ram is a Store backed by the sharded, TTL- and cost-aware in-memory
// cache this engine's ambient cache package provides. It is the default
// backend for Cache edges: bounded by entry count or byte cost, with
// LRU/2Q eviction handled entirely by the wrapped cache.Cache. Get/Set
// additionally go through a txn.Manager, so a key's reader never overlaps
// its writer even though the wrapped cache's own concurrency guarantees are
// per-operation, not per-transaction (spec.md §4.7/§4.9).
//
// A Ram built with NewTieredRam falls back to a lower Store on a local
// miss, via the wrapped cache's GetOrLoad — the fallback load for a given
// key is coalesced across concurrent Gets by the wrapped cache's internal
// singleflight.Group, so a thundering-herd read for one cold key never
// fans out into N redundant loads of the lower tier.
type Ram struct {
	c    cache.Cache[string, any]
	txns *txn.Manager
	next Store
}

// defaultCapacity is used when opts.Capacity is left at zero: the
// underlying cache package panics on a non-positive capacity, so a caller
// who just wants an effectively unbounded RAM backend doesn't have to know
// that and pick a number.
const defaultCapacity = 1 << 20

// errTieredMiss is NewTieredRam's Loader sentinel for "absent in the lower
// tier too" — translated back to a plain (nil, false, nil) miss by Get,
// never surfaced to callers.
var errTieredMiss = errors.New("backend: tiered ram: miss in lower tier")

// NewRam wraps opts into a Ram backend. opts is the same Options the
// ambient cache package accepts directly — capacity, shard count,
// eviction policy, TTL, and cost limiting all carry over unchanged; a zero
// Capacity is treated as "large, not actually unbounded" rather than
// rejected. An optional Locker coordinates Get/Set transactions across this
// Ram's key space; omit it to get a private in-process locker.
func NewRam(opts cache.Options[string, any], lockers ...locker.Locker) *Ram {
	if opts.Capacity <= 0 {
		opts.Capacity = defaultCapacity
	}
	return &Ram{c: cache.New(opts), txns: txn.New(pickLocker(lockers))}
}

// NewTieredRam builds a Ram that falls through to next (typically a Disk
// store) on a local miss, populating itself on the way back up — a small
// RAM-over-Disk read-through tier, the shape a Cache edge backed by a slow
// Store benefits from without paying for it on every hit. opts.Loader is
// set internally; any Loader the caller supplies is overwritten.
func NewTieredRam(opts cache.Options[string, any], next Store, lockers ...locker.Locker) *Ram {
	if opts.Capacity <= 0 {
		opts.Capacity = defaultCapacity
	}
	opts.Loader = func(_ context.Context, key string) (any, error) {
		v, ok, err := next.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errTieredMiss
		}
		return v, nil
	}
	return &Ram{c: cache.New(opts), txns: txn.New(pickLocker(lockers)), next: next}
}

// Contains reports residency in this tier or, for a tiered Ram, the lower
// tier as well — a tiered Get that would successfully load from next must
// count as "exists" for the txn.Manager's reservation to grant a read.
func (r *Ram) Contains(key string) bool {
	if _, ok := r.c.Get(key); ok {
		return true
	}
	return r.next != nil && r.next.Contains(key)
}

// Get reserves a read slot for key before looking it up: if a writer is
// mid-Set for the same key, Get blocks (briefly, with bounded retry) rather
// than racing it.
func (r *Ram) Get(key string) (any, bool, error) {
	isRead, token, err := r.txns.Reserve(key, func() bool { return r.Contains(key) })
	if err != nil {
		return nil, false, err
	}
	if !isRead {
		// Get never creates an entry; Reserve only took the write branch
		// because the key didn't exist at that instant.
		r.txns.Fail(key, token)
		return nil, false, nil
	}
	type result struct {
		v   any
		ok  bool
		err error
	}
	res := txn.ReleaseRead(r.txns, key, token, func(k string) result {
		if r.next == nil {
			v, ok := r.c.Get(k)
			return result{v, ok, nil}
		}
		v, err := r.c.GetOrLoad(context.Background(), k)
		if err != nil {
			if errors.Is(err, errTieredMiss) {
				return result{nil, false, nil}
			}
			return result{nil, false, err}
		}
		return result{v, true, nil}
	})
	return res.v, res.ok, res.err
}

// Set reserves the exclusive write slot for key — excluding every
// concurrent Get and Set on the same key — then stores value.
func (r *Ram) Set(key string, value any) error {
	_, token, err := r.txns.Reserve(key, func() bool { return false })
	if err != nil {
		return err
	}
	txn.ReleaseWrite(r.txns, key, value, token, func(k string, v any) {
		r.c.Set(k, v)
	})
	return nil
}

// SetWithTTL is Set with a per-entry expiration, implementing TTLStore: a
// Cache edge configured with a TTL uses this instead of Set when the
// backing Store supports it.
func (r *Ram) SetWithTTL(key string, value any, ttl time.Duration) error {
	_, token, err := r.txns.Reserve(key, func() bool { return false })
	if err != nil {
		return err
	}
	txn.ReleaseWrite(r.txns, key, value, token, func(k string, v any) {
		r.c.SetWithTTL(k, v, ttl)
	})
	return nil
}

var _ TTLStore = (*Ram)(nil)

// Len reports the number of resident entries, delegating to the wrapped
// cache — useful for tests and for metrics/prom's size gauge.
func (r *Ram) Len() int { return r.c.Len() }

// Close releases the wrapped cache's background workers.
func (r *Ram) Close() error { return r.c.Close() }
