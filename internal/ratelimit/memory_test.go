package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

func TestMemoryLimiter_RejectsAfterMax(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(Policy{Window: time.Minute, Max: 30}).WithClock(clock.Now)
	ctx := context.Background()

	for i := 1; i <= 30; i++ {
		d, err := l.Allow(ctx, "key-1")
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d should be admitted", i)
		assert.Equal(t, 30-i, d.Remaining)
	}

	d, err := l.Allow(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Minute, d.RetryAfter)

	other, err := l.Allow(ctx, "key-2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "windows are per key")
}

func TestMemoryLimiter_ResetsAfterWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(Policy{Window: time.Minute, Max: 2}).WithClock(clock.Now)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, _ := l.Allow(ctx, "k")
		require.True(t, d.Allowed)
	}
	d, _ := l.Allow(ctx, "k")
	require.False(t, d.Allowed)

	clock.Advance(30 * time.Second)
	d, _ = l.Allow(ctx, "k")
	assert.False(t, d.Allowed, "still inside the window")

	clock.Advance(31 * time.Second)
	d, _ = l.Allow(ctx, "k")
	assert.True(t, d.Allowed, "window expired, counter resets")
	assert.Equal(t, 1, d.Remaining)
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	l := NewMemoryLimiter(Policy{Window: time.Hour, Max: 50})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Allow(ctx, "shared")
			if err == nil && d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}
