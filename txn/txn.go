// Package txn implements the read/write transaction protocol shared by all
// cache backends (spec.md §4.7, C7): at any instant a key has at most one
// writer, and readers exclude writers. It is built on top of any
// locker.Locker, adding the bounded retry-with-sleep acquisition loop and
// the ContentionError ("deadlock suspected") failure mode.
package txn

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/samokhinv/connectome-go/locker"
)

// ContentionError is raised when a reservation cannot be acquired within the
// retry budget — spec.md §7's CacheContentionError ("deadlock suspected").
type ContentionError struct {
	Key     string
	Retries int
}

func (e *ContentionError) Error() string {
	return fmt.Sprintf("txn: deadlock suspected for key %q after %d retries", e.Key, e.Retries)
}

// Kind distinguishes the reservation a Token represents.
type Kind uint8

const (
	// Read marks a token granted by a read reservation.
	Read Kind = iota
	// Write marks a token granted by a write reservation.
	Write
)

// Token is an opaque reservation handle returned by Reserve and consumed by
// Release/Fail. Holding a Token without releasing it is a caller bug; the
// retry cap on the next reservation attempt for the same key is what
// ultimately surfaces that bug as a ContentionError.
type Token struct {
	kind Kind
}

// Kind reports whether the token represents a read or a write reservation.
func (t Token) Kind() Kind { return t.kind }

// Manager mediates reservations for one Locker. The zero value is not
// usable; construct with New.
type Manager struct {
	locker     locker.Locker
	retryCap   int
	sleepEvery time.Duration
	log        *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithRetryCap overrides the default bounded-retry cap.
func WithRetryCap(n int) Option {
	return func(m *Manager) { m.retryCap = n }
}

// WithSleep overrides the default sleep between retries.
func WithSleep(d time.Duration) Option {
	return func(m *Manager) { m.sleepEvery = d }
}

// WithLogger overrides the default logger (slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// defaultRetryCap matches the scale a bounded sleep-retry loop should run
// before declaring a deadlock ("tens of thousands" of attempts).
const defaultRetryCap = 20_000

const defaultSleep = 200 * time.Microsecond

// New constructs a Manager over locker l.
func New(l locker.Locker, opts ...Option) *Manager {
	m := &Manager{
		locker:     l,
		retryCap:   defaultRetryCap,
		sleepEvery: defaultSleep,
		log:        slog.Default(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Reserve atomically inspects key's state: if it exists (per the caller's
// exists predicate) and no writer holds it, transitions to reading and
// returns (true, readToken); otherwise it blocks — retrying with a short
// sleep — until a write slot can be acquired (which requires the key to be
// absent), then transitions to writing and returns (false, writeToken).
//
// The caller is responsible for not creating the key's underlying storage
// entry until its write reservation is granted; this is what prevents
// reader/writer starvation (spec.md §4.7).
func (m *Manager) Reserve(key string, exists func() bool) (isRead bool, token Token, err error) {
	for attempt := 0; attempt < m.retryCap; attempt++ {
		if exists() {
			if m.locker.StartReading(key) {
				return true, Token{kind: Read}, nil
			}
		} else if m.locker.StartWriting(key) {
			return false, Token{kind: Write}, nil
		}
		time.Sleep(m.sleepEvery)
	}

	m.log.Error("potential deadlock detected", "key", key, "retries", m.retryCap)
	return false, Token{}, &ContentionError{Key: key, Retries: m.retryCap}
}

// Fail releases token without performing the associated read/write — used
// when the caller aborts before consuming its reservation (e.g. the edge's
// generator panicked).
func (m *Manager) Fail(key string, token Token) {
	switch token.kind {
	case Read:
		m.locker.StopReading(key)
	case Write:
		m.locker.StopWriting(key)
	}
}

// ReleaseRead invokes readFn(key) under the read reservation represented by
// token, then releases it. Go has no generic methods, so this is a
// package-level function parameterized on readFn's result type.
func ReleaseRead[T any](m *Manager, key string, token Token, readFn func(key string) T) T {
	defer m.locker.StopReading(key)
	return readFn(key)
}

// ReleaseWrite invokes writeFn(key, value) under the write reservation
// represented by token, then releases it.
func ReleaseWrite[T any](m *Manager, key string, value T, token Token, writeFn func(key string, value T)) {
	defer m.locker.StopWriting(key)
	writeFn(key, value)
}
