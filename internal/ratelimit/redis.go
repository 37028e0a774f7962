package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Counter is the subset of the Redis client used for shared counters.
type Counter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// RedisLimiter shares the fixed window across instances through INCR + EXPIRE.
type RedisLimiter struct {
	policy Policy
	store  Counter
	scope  string
}

func NewRedisLimiter(policy Policy, store Counter, scope string) *RedisLimiter {
	return &RedisLimiter{policy: policy, store: store, scope: scope}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, err := l.store.IncrWithTTL(ctx, l.store.RateLimitKey(l.scope+":"+key), l.policy.Window)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit counter: %w", err)
	}
	if count > int64(l.policy.Max) {
		return l.policy.denied(), nil
	}
	return l.policy.allowed(int(count)), nil
}
