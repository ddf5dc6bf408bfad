// Package backend implements the pluggable storage layer a Cache edge
// reads and writes through (spec.md §4.9): Ram, built on the sharded,
// policy-driven in-memory cache this engine's teacher codebase provides,
// and Disk, a content-addressed local filesystem blob store for values too
// large or too numerous to keep resident.
package backend

import (
	"fmt"
	"time"

	"github.com/samokhinv/connectome-go/locker"
)

// Store is the contract a Cache edge needs: content-addressed lookup,
// presence check, and write. Keys are always a nodehash.Hash's Hex digest.
type Store interface {
	Contains(key string) bool
	Get(key string) (any, bool, error)
	Set(key string, value any) error
}

// TTLStore is a Store that can also expire an entry after a relative
// duration. A Cache edge configured with a TTL type-asserts its Store
// against this interface, using SetWithTTL when available and falling back
// to a plain Set (no expiry) otherwise — a store backend opts into TTL
// support by implementing one more method, not by widening Store itself.
type TTLStore interface {
	Store
	SetWithTTL(key string, value any, ttl time.Duration) error
}

// pickLocker returns the first locker passed, defaulting to a fresh
// locker.InProcess when none is given — every Store implementation guards
// its Get/Set pair with a txn.Manager over this locker (spec.md §4.9), and
// an in-process lock is the right default for a store that isn't shared
// across processes to begin with.
func pickLocker(ls []locker.Locker) locker.Locker {
	if len(ls) > 0 && ls[0] != nil {
		return ls[0]
	}
	return locker.NewInProcess()
}

// BackendError wraps a failure from a Store implementation, attributing it
// to the backend and the key involved (spec.md §7).
type BackendError struct {
	Backend string
	Key     string
	Cause   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend(%s): key %q: %v", e.Backend, e.Key, e.Cause)
}

func (e *BackendError) Unwrap() error { return e.Cause }
