package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCmd struct {
	mu      sync.Mutex
	values  map[string]int64
	expires map[string]time.Duration
	evalErr error
}

func newFakeCmd() *fakeCmd {
	return &fakeCmd{values: make(map[string]int64), expires: make(map[string]time.Duration)}
}

func (f *fakeCmd) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewBoolCmd(ctx)
	if _, ok := f.values[key]; ok {
		cmd.SetVal(false)
		return cmd
	}
	f.values[key] = 1
	f.expires[key] = expiration
	cmd.SetVal(true)
	return cmd
}

// Eval mirrors incrWithTTLScript: one locked step that increments and sets
// the expiry when the key has none.
func (f *fakeCmd) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewCmd(ctx)
	if f.evalErr != nil {
		cmd.SetErr(f.evalErr)
		return cmd
	}
	key := keys[0]
	ms := args[0].(int64)
	f.values[key]++
	if ms > 0 && f.expires[key] == 0 {
		f.expires[key] = time.Duration(ms) * time.Millisecond
	}
	cmd.SetVal(f.values[key])
	return cmd
}

func (f *fakeCmd) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(n)
	return cmd
}

func TestStore_IncrWithTTL_SetsExpiryOnFirstIncrement(t *testing.T) {
	cmd := newFakeCmd()
	s := &Store{cmd: cmd}
	ctx := context.Background()

	n, err := s.IncrWithTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, cmd.expires["k"])

	cmd.expires["k"] = 30 * time.Second
	n, err = s.IncrWithTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 30*time.Second, cmd.expires["k"], "a running window keeps its ttl")
}

func TestStore_IncrWithTTL_RestoresMissingExpiry(t *testing.T) {
	cmd := newFakeCmd()
	s := &Store{cmd: cmd}
	ctx := context.Background()
	cmd.values["k"] = 5

	n, err := s.IncrWithTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.Equal(t, time.Minute, cmd.expires["k"])
}

func TestStore_IncrWithTTL_FailedEvalLeavesNoCounter(t *testing.T) {
	cmd := newFakeCmd()
	cmd.evalErr = errors.New("connection reset")
	s := &Store{cmd: cmd}

	_, err := s.IncrWithTTL(context.Background(), "k", time.Minute)
	require.Error(t, err)
	assert.Empty(t, cmd.values, "a failed call leaves no counter behind")
}

func TestIncrWithTTLScript_GuardsExpiry(t *testing.T) {
	assert.Contains(t, incrWithTTLScript, "INCR")
	assert.Contains(t, incrWithTTLScript, "PTTL")
	assert.Contains(t, incrWithTTLScript, "PEXPIRE")
}

func TestStore_SetNXAndDel(t *testing.T) {
	s := &Store{cmd: newFakeCmd()}
	ctx := context.Background()
	key := s.IdempotencyKey("stripe", "evt_1")
	assert.Equal(t, "nh:idempotency:stripe:evt_1", key)

	set, err := s.SetNX(ctx, key, "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, set)

	set, err = s.SetNX(ctx, key, "1", time.Hour)
	require.NoError(t, err)
	assert.False(t, set)

	require.NoError(t, s.Del(ctx, key))
	set, err = s.SetNX(ctx, key, "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, set)
}

func TestStore_RateLimitKey(t *testing.T) {
	s := &Store{}
	assert.Equal(t, "nh:rate_limit:apikey:123", s.RateLimitKey("apikey:123"))
}
