package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Defaults for the per-identity sliding window.
const (
	DefaultWindow = time.Minute
	DefaultMax    = 10
)

// Limiter gates requests per identity. A false result means the caller must
// answer with 429 and perform no further work; no error is raised on deny.
type Limiter interface {
	Allow(ctx context.Context, identity string, bypass bool) bool
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter enforces a per-identity request window in process memory.
// The map is local to one instance, so in a multi-instance deployment the
// limit is only enforced per instance; use the Redis limiter when
// cross-instance enforcement matters.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	per     time.Duration
	max     int
	now     func() time.Time
}

// NewMemoryLimiter builds an in-memory limiter. Non-positive arguments fall
// back to the defaults.
func NewMemoryLimiter(max int, per time.Duration) *MemoryLimiter {
	if max <= 0 {
		max = DefaultMax
	}
	if per <= 0 {
		per = DefaultWindow
	}
	return &MemoryLimiter{
		windows: make(map[string]*window),
		per:     per,
		max:     max,
		now:     time.Now,
	}
}

// Allow consumes one slot from the identity's window. Bypass always allows
// and performs no bookkeeping.
func (l *MemoryLimiter) Allow(_ context.Context, identity string, bypass bool) bool {
	if bypass {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[identity]
	if !ok || now.After(w.resetAt) {
		l.windows[identity] = &window{count: 1, resetAt: now.Add(l.per)}
		return true
	}
	if w.count >= l.max {
		return false
	}
	w.count++
	return true
}

var _ Limiter = (*MemoryLimiter)(nil)
