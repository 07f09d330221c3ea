// Package ratelimit implements per-caller sliding-window admission control
// for the chat and maps endpoints. Each (identity, class) pair owns a
// window of request timestamps; stale entries are purged lazily on every
// check.
package ratelimit

import (
	"log/slog"
	"sync"
	"time"
)

// Endpoint classes with distinct ceilings.
const (
	ClassDefault    = "default"
	ClassMaps       = "maps"
	ClassDirections = "directions"
	ClassWebSocket  = "websocket"
)

// Limit describes the ceiling for one endpoint class.
type Limit struct {
	Requests int
	Window   time.Duration
}

// DefaultLimits returns the per-class ceilings applied when none are
// configured.
func DefaultLimits() map[string]Limit {
	return map[string]Limit{
		ClassDefault:    {Requests: 60, Window: time.Minute},
		ClassMaps:       {Requests: 30, Window: time.Minute},
		ClassDirections: {Requests: 20, Window: time.Minute},
		ClassWebSocket:  {Requests: 100, Window: time.Minute},
	}
}

// Store holds request windows keyed by identity and class. Implementations
// must perform the purge-count-record sequence atomically so concurrent
// admission checks for the same key cannot exceed the ceiling.
type Store interface {
	// Admit purges entries older than now-window for key, then admits
	// iff the remaining count is strictly below ceiling, recording now
	// on admission.
	Admit(key string, now time.Time, window time.Duration, ceiling int) (bool, error)

	// Count returns the number of entries within [now-window, now].
	Count(key string, now time.Time, window time.Duration) (int, error)

	// Reset drops every window whose key has the given prefix.
	Reset(prefix string) error
}

// Limiter decides whether a caller may issue another request on a given
// endpoint class. Store failures are fail-open: availability wins over
// strict enforcement, and the failure is logged.
type Limiter struct {
	store  Store
	limits map[string]Limit
	logger *slog.Logger

	now func() time.Time
}

// New creates a Limiter backed by the given store. A nil store gets an
// in-memory one; missing classes fall back to the default limits.
func New(store Store, limits map[string]Limit, logger *slog.Logger) *Limiter {
	if store == nil {
		store = NewMemoryStore()
	}
	if limits == nil {
		limits = DefaultLimits()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		store:  store,
		limits: limits,
		logger: logger,
		now:    time.Now,
	}
}

func (l *Limiter) limitFor(class string) Limit {
	if lim, ok := l.limits[class]; ok {
		return lim
	}
	if lim, ok := l.limits[ClassDefault]; ok {
		return lim
	}
	return Limit{Requests: 60, Window: time.Minute}
}

func windowKey(class, identity string) string {
	return class + ":" + identity
}

// Admit reports whether the identity may issue another request on the
// endpoint class, recording the request when admitted.
func (l *Limiter) Admit(identity, class string) bool {
	lim := l.limitFor(class)

	ok, err := l.store.Admit(windowKey(class, identity), l.now(), lim.Window, lim.Requests)
	if err != nil {
		// Fail open: a broken store must not take the service down.
		l.logger.Warn("rate limit store failure, admitting request",
			"identity", identity,
			"class", class,
			"error", err)
		return true
	}

	if !ok {
		l.logger.Warn("rate limit exceeded",
			"identity", identity,
			"class", class,
			"ceiling", lim.Requests)
	}
	return ok
}

// Remaining returns how many requests the identity has left in the
// current window, zero when the store is unavailable.
func (l *Limiter) Remaining(identity, class string) int {
	lim := l.limitFor(class)

	count, err := l.store.Count(windowKey(class, identity), l.now(), lim.Window)
	if err != nil {
		l.logger.Warn("rate limit store failure", "identity", identity, "error", err)
		return 0
	}

	remaining := lim.Requests - count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears all windows for the identity across every class.
func (l *Limiter) Reset(identity string) {
	for class := range l.limits {
		if err := l.store.Reset(windowKey(class, identity)); err != nil {
			l.logger.Warn("rate limit reset failure", "identity", identity, "error", err)
		}
	}
}

// MemoryStore is the in-process Store implementation. A single mutex
// guards the whole map; the purge-count-record sequence runs under it.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string][]time.Time)}
}

// Admit implements Store.
func (s *MemoryStore) Admit(key string, now time.Time, window time.Duration, ceiling int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := purge(s.windows[key], now.Add(-window))
	if len(kept) >= ceiling {
		s.windows[key] = kept
		return false, nil
	}

	s.windows[key] = append(kept, now)
	return true, nil
}

// Count implements Store.
func (s *MemoryStore) Count(key string, now time.Time, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := purge(s.windows[key], now.Add(-window))
	s.windows[key] = kept
	return len(kept), nil
}

// Reset implements Store.
func (s *MemoryStore) Reset(prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.windows {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.windows, key)
		}
	}
	return nil
}

// purge drops timestamps at or before the cutoff. Windows are append-only
// and therefore ordered, so the first kept index ends the scan.
func purge(window []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(window) && !window[idx].After(cutoff) {
		idx++
	}
	if idx == 0 {
		return window
	}
	return append([]time.Time(nil), window[idx:]...)
}
