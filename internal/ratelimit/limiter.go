// Package ratelimit holds the per-credential request limiter used by the metered API.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a request identified by key may proceed.
// Implementations must be safe for concurrent use.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Policy struct {
	Window time.Duration
	Max    int
}

func (p Policy) denied() Decision {
	return Decision{Allowed: false, Limit: p.Max, Remaining: 0, RetryAfter: p.Window}
}

func (p Policy) allowed(count int) Decision {
	remaining := p.Max - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Limit: p.Max, Remaining: remaining}
}
