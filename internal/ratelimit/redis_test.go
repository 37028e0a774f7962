package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	ttls   map[string]time.Duration
	err    error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int64), ttls: make(map[string]time.Duration)}
}

func (f *fakeCounter) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	if f.counts[key] == 1 {
		f.ttls[key] = ttl
	}
	return f.counts[key], nil
}

func (f *fakeCounter) RateLimitKey(scope string) string {
	return "nh:rate_limit:" + scope
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	store := newFakeCounter()
	l := NewRedisLimiter(Policy{Window: time.Minute, Max: 3}, store, "apikey")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := l.Allow(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	d, err := l.Allow(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Minute, d.RetryAfter)
	assert.Equal(t, time.Minute, store.ttls["nh:rate_limit:apikey:abc"])
}

func TestRedisLimiter_PropagatesErrors(t *testing.T) {
	store := newFakeCounter()
	store.err = errors.New("connection refused")
	l := NewRedisLimiter(Policy{Window: time.Minute, Max: 3}, store, "apikey")

	_, err := l.Allow(context.Background(), "abc")
	assert.Error(t, err)
}
