// Package ratelimit implements a fixed-window request limiter backed by an
// in-memory store. Windows are created lazily per key and expire lazily;
// nothing survives a process restart. That is a documented limitation, not a
// defect: this is a best-effort abuse guard, not a billing-grade limiter.
package ratelimit

import (
	"sync"
	"time"
)

// DefaultPurgeThreshold is the key count above which expired windows are
// opportunistically purged. Purging only bounds memory; correctness does not
// depend on it because expiry is checked on every lookup.
const DefaultPurgeThreshold = 10000

// Result is the outcome of a single limiter check.
type Result struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Remaining is the number of requests left in the current window.
	Remaining int

	// ResetAt is when the current window ends. Callers derive a
	// human-readable retry hint from this.
	ResetAt time.Time
}

// window holds the per-key counter state.
type window struct {
	count   int
	resetAt time.Time
}

// Store is a process-wide fixed-window counter store. It is safe for
// concurrent use; checks for a given key are linearized by a single mutex.
type Store struct {
	mu             sync.Mutex
	windows        map[string]*window
	purgeThreshold int

	// now is injectable for tests.
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithPurgeThreshold overrides the key count that triggers cleanup.
func WithPurgeThreshold(n int) Option {
	return func(s *Store) { s.purgeThreshold = n }
}

// NewStore creates an empty limiter store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		windows:        make(map[string]*window),
		purgeThreshold: DefaultPurgeThreshold,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check records one request against the key and reports whether it is
// allowed under maxRequests per windowDuration.
//
// A missing or expired window starts fresh with count=1. A saturated window
// denies the request without touching the stored state, so the reset time a
// denied caller sees is stable for the whole window.
func (s *Store) Check(key string, maxRequests int, windowDuration time.Duration) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		resetAt := now.Add(windowDuration)
		s.windows[key] = &window{count: 1, resetAt: resetAt}

		if len(s.windows) > s.purgeThreshold {
			s.purgeExpired(now)
		}

		return Result{Allowed: true, Remaining: maxRequests - 1, ResetAt: resetAt}
	}

	if w.count >= maxRequests {
		return Result{Allowed: false, Remaining: 0, ResetAt: w.resetAt}
	}

	w.count++
	return Result{Allowed: true, Remaining: maxRequests - w.count, ResetAt: w.resetAt}
}

// Len returns the number of tracked windows, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// purgeExpired drops windows whose reset time has passed. Caller holds the lock.
func (s *Store) purgeExpired(now time.Time) {
	for k, w := range s.windows {
		if now.After(w.resetAt) {
			delete(s.windows, k)
		}
	}
}
