package ratelimit

import (
	"context"
	"sync"
	"time"
)

type record struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a process-local fixed-window counter. State is shared by
// every request handler, so all mutation happens under the mutex. Quotas are
// enforced per instance; a multi-node deployment wanting a shared quota should
// use RedisLimiter instead.
type MemoryLimiter struct {
	mu      sync.Mutex
	records map[string]*record
	now     func() time.Time
}

// NewMemoryLimiter builds an empty limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// Check applies the fixed-window algorithm for key. A request arriving exactly
// at the window boundary starts a fresh window.
func (l *MemoryLimiter) Check(_ context.Context, key string, cfg Config) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || !now.Before(rec.resetAt) {
		rec = &record{count: 1, resetAt: now.Add(cfg.Window)}
		l.records[key] = rec
		return Result{Allowed: true, Remaining: cfg.MaxRequests - 1, ResetAt: rec.resetAt}
	}

	if rec.count < cfg.MaxRequests {
		rec.count++
		return Result{Allowed: true, Remaining: cfg.MaxRequests - rec.count, ResetAt: rec.resetAt}
	}

	return Result{Allowed: false, Remaining: 0, ResetAt: rec.resetAt}
}

// Sweep deletes records whose window has expired. Not needed for correctness
// of Check, only to bound memory growth.
func (l *MemoryLimiter) Sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, rec := range l.records {
		if !now.Before(rec.resetAt) {
			delete(l.records, key)
		}
	}
}

// StartSweeper runs Sweep on the given interval until ctx is cancelled.
func (l *MemoryLimiter) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}

func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
