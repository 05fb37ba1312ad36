package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCheck_Saturation(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(WithClock(clock.Now))

	const max = 3
	window := time.Second

	// Three requests pass, the fourth is denied.
	for i := 0; i < max; i++ {
		res := store.Check("k", max, window)
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, max-i-1, res.Remaining)
	}

	denied := store.Check("k", max, window)
	assert.False(t, denied.Allowed)
	assert.Equal(t, 0, denied.Remaining)
	assert.Equal(t, clock.Now().Add(window), denied.ResetAt)

	// A fifth call after the window elapses starts a fresh window.
	clock.Advance(window + time.Millisecond)
	fresh := store.Check("k", max, window)
	assert.True(t, fresh.Allowed)
	assert.Equal(t, max-1, fresh.Remaining)
	assert.Equal(t, clock.Now().Add(window), fresh.ResetAt)
}

func TestCheck_DeniedResetAtIsStable(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(WithClock(clock.Now))

	first := store.Check("k", 1, time.Hour)
	require.True(t, first.Allowed)

	clock.Advance(time.Minute)
	d1 := store.Check("k", 1, time.Hour)
	clock.Advance(time.Minute)
	d2 := store.Check("k", 1, time.Hour)

	assert.False(t, d1.Allowed)
	assert.False(t, d2.Allowed)
	assert.Equal(t, first.ResetAt, d1.ResetAt)
	assert.Equal(t, d1.ResetAt, d2.ResetAt)
}

func TestCheck_IndependentKeys(t *testing.T) {
	store := NewStore()

	exhausted := store.Check("a", 1, time.Hour)
	require.True(t, exhausted.Allowed)
	assert.False(t, store.Check("a", 1, time.Hour).Allowed)

	// A different key has its own window.
	assert.True(t, store.Check("b", 1, time.Hour).Allowed)
}

func TestCheck_PurgesExpiredEntries(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(WithClock(clock.Now), WithPurgeThreshold(10))

	for i := 0; i < 10; i++ {
		store.Check(fmt.Sprintf("old-%d", i), 5, time.Second)
	}
	require.Equal(t, 10, store.Len())

	// All ten expire; the next insert crosses the threshold and purges them.
	clock.Advance(2 * time.Second)
	store.Check("fresh", 5, time.Second)
	assert.Equal(t, 1, store.Len())
}

func TestCheck_ConcurrentIncrementsAreNotLost(t *testing.T) {
	store := NewStore()

	const workers = 50
	allowed := make(chan bool, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- store.Check("shared", 10, time.Hour).Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	var passed int
	for ok := range allowed {
		if ok {
			passed++
		}
	}
	assert.Equal(t, 10, passed)
}
