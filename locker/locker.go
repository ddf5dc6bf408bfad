// Package locker implements the three coordination backends described in
// spec.md §4.8 (C8): Dummy (always grants), InProcess (a single mutex
// guarding two counters per key), and Redis (a shared hash on an external
// coordination store, with atomic Lua scripts for compare-and-set writer
// acquisition and conditional reader increment/decrement).
//
// Lockers are the low-level reservation primitive; the higher-level
// reserve/release/fail protocol with bounded retry lives in package txn.
package locker

// Locker mediates exclusive writes and shared reads per key. Multiple
// readers may hold the same key simultaneously; a writer excludes all
// readers and all other writers.
type Locker interface {
	// StartReading attempts to reserve a read slot for key. It returns
	// false if a writer currently holds key.
	StartReading(key string) bool
	// StopReading releases a previously granted read slot for key.
	StopReading(key string)
	// StartWriting attempts to reserve the exclusive write slot for key.
	// It returns false if any reader or writer currently holds key.
	StartWriting(key string) bool
	// StopWriting releases a previously granted write slot for key.
	StopWriting(key string)
}

// SizeTracker is an optional capability: lockers backed by a shared
// coordination store can track an aggregate volume counter (e.g. total
// bytes written to a disk cache) alongside the per-key reservation state.
type SizeTracker interface {
	Size() (int64, error)
	SetSize(size int64) error
	IncSize(delta int64) error
}
