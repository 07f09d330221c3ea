package ratelimit

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/geochat-ai/geochat/pkg/testutil"
)

func newTestLimiter(limits map[string]Limit) (*Limiter, *time.Time) {
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(NewMemoryStore(), limits, testutil.DiscardLogger())
	l.now = func() time.Time { return current }
	return l, &current
}

func TestAdmitCeiling(t *testing.T) {
	l, clock := newTestLimiter(map[string]Limit{
		ClassMaps: {Requests: 30, Window: time.Minute},
	})

	for i := 0; i < 30; i++ {
		if !l.Admit("user-1", ClassMaps) {
			t.Fatalf("request %d unexpectedly denied", i+1)
		}
	}
	if l.Admit("user-1", ClassMaps) {
		t.Fatal("31st request within the window was admitted")
	}

	// A different identity is unaffected
	if !l.Admit("user-2", ClassMaps) {
		t.Error("separate identity was denied")
	}

	// Advancing past the window frees the identity again
	*clock = clock.Add(61 * time.Second)
	if !l.Admit("user-1", ClassMaps) {
		t.Error("request after window elapsed was denied")
	}
}

func TestAdmitSlidingWindow(t *testing.T) {
	l, clock := newTestLimiter(map[string]Limit{
		ClassDefault: {Requests: 2, Window: time.Minute},
	})

	if !l.Admit("u", ClassDefault) || !l.Admit("u", ClassDefault) {
		t.Fatal("initial requests denied")
	}
	if l.Admit("u", ClassDefault) {
		t.Fatal("request over ceiling admitted")
	}

	// Half a window later, the first two entries are still inside the
	// trailing window.
	*clock = clock.Add(30 * time.Second)
	if l.Admit("u", ClassDefault) {
		t.Error("request admitted while window still full")
	}

	*clock = clock.Add(31 * time.Second)
	if !l.Admit("u", ClassDefault) {
		t.Error("request denied after entries slid out of the window")
	}
}

func TestRemainingAndReset(t *testing.T) {
	l, _ := newTestLimiter(map[string]Limit{
		ClassDirections: {Requests: 20, Window: time.Minute},
	})

	for i := 0; i < 5; i++ {
		l.Admit("u", ClassDirections)
	}
	if got := l.Remaining("u", ClassDirections); got != 15 {
		t.Errorf("Remaining = %d, want 15", got)
	}

	l.Reset("u")
	if got := l.Remaining("u", ClassDirections); got != 20 {
		t.Errorf("Remaining after reset = %d, want 20", got)
	}
}

func TestUnknownClassFallsBackToDefault(t *testing.T) {
	l, _ := newTestLimiter(map[string]Limit{
		ClassDefault: {Requests: 1, Window: time.Minute},
	})

	if !l.Admit("u", "unknown") {
		t.Fatal("first request denied")
	}
	if l.Admit("u", "unknown") {
		t.Error("unknown class did not inherit the default ceiling")
	}
}

// failingStore simulates an unreachable shared store.
type failingStore struct{}

func (failingStore) Admit(string, time.Time, time.Duration, int) (bool, error) {
	return false, errors.New("store unreachable")
}
func (failingStore) Count(string, time.Time, time.Duration) (int, error) {
	return 0, errors.New("store unreachable")
}
func (failingStore) Reset(string) error { return errors.New("store unreachable") }

func TestFailOpenOnStoreFailure(t *testing.T) {
	l := New(failingStore{}, nil, testutil.DiscardLogger())

	if !l.Admit("u", ClassDefault) {
		t.Error("store failure did not fail open")
	}
	if got := l.Remaining("u", ClassDefault); got != 0 {
		t.Errorf("Remaining on store failure = %d, want 0", got)
	}
}

func TestConcurrentAdmission(t *testing.T) {
	l := New(NewMemoryStore(), map[string]Limit{
		ClassDefault: {Requests: 50, Window: time.Minute},
	}, testutil.DiscardLogger())

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit("shared", ClassDefault) {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	if admitted != 50 {
		t.Errorf("admitted %d concurrent requests, want exactly 50", admitted)
	}
}
