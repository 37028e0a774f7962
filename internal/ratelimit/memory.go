package ratelimit

import (
	"context"
	"sync"
	"time"
)

const sweepEvery = 1024

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window counter held in process memory. State is
// per process and lost on restart; use RedisLimiter when running several instances.
type MemoryLimiter struct {
	policy Policy
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
	calls   int
}

func NewMemoryLimiter(policy Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:  policy,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// WithClock replaces the time source, mainly for tests.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.policy.Window)}
		return l.policy.allowed(1), nil
	}

	if w.count >= l.policy.Max {
		return l.policy.denied(), nil
	}

	w.count++
	return l.policy.allowed(w.count), nil
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
		}
	}
}
