package ratelimit

import (
	"context"
	"time"
)

// Config is a fixed-window quota: at most MaxRequests per Window.
type Config struct {
	Window      time.Duration
	MaxRequests int
}

// Result is the outcome of a quota check. ResetAt tells a denied client when
// the current window expires.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter decides whether a keyed request fits its quota. Check never fails:
// implementations backed by external stores must degrade to allowing traffic
// rather than surfacing errors to request handling.
type Limiter interface {
	Check(ctx context.Context, key string, cfg Config) Result
}
