package ratelimit

import (
	"context"
	"testing"
	"time"
)

func newFakeClockLimiter(start time.Time) (*MemoryLimiter, *time.Time) {
	now := start
	l := NewMemoryLimiter()
	l.now = func() time.Time { return now }
	return l, &now
}

func TestCheckMonotonicity(t *testing.T) {
	l, _ := newFakeClockLimiter(time.Unix(1_700_000_000, 0))
	cfg := Config{Window: time.Minute, MaxRequests: 5}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result := l.Check(ctx, "ip:10.0.0.1", cfg)
		if !result.Allowed {
			t.Fatalf("call %d denied, want allowed", i+1)
		}
		if want := 4 - i; result.Remaining != want {
			t.Errorf("call %d remaining = %d, want %d", i+1, result.Remaining, want)
		}
	}

	result := l.Check(ctx, "ip:10.0.0.1", cfg)
	if result.Allowed {
		t.Error("6th call allowed, want denied")
	}
	if result.Remaining != 0 {
		t.Errorf("denied remaining = %d, want 0", result.Remaining)
	}
}

func TestCheckScenario(t *testing.T) {
	// 2 requests per 60s for key ip:203.0.113.5
	l, _ := newFakeClockLimiter(time.Unix(1_700_000_000, 0))
	cfg := Config{Window: 60_000 * time.Millisecond, MaxRequests: 2}
	ctx := context.Background()
	key := "ip:203.0.113.5"

	if r := l.Check(ctx, key, cfg); !r.Allowed || r.Remaining != 1 {
		t.Errorf("call 1 = {%v %d}, want {true 1}", r.Allowed, r.Remaining)
	}
	if r := l.Check(ctx, key, cfg); !r.Allowed || r.Remaining != 0 {
		t.Errorf("call 2 = {%v %d}, want {true 0}", r.Allowed, r.Remaining)
	}
	if r := l.Check(ctx, key, cfg); r.Allowed || r.Remaining != 0 {
		t.Errorf("call 3 = {%v %d}, want {false 0}", r.Allowed, r.Remaining)
	}
}

func TestWindowReset(t *testing.T) {
	l, now := newFakeClockLimiter(time.Unix(1_700_000_000, 0))
	cfg := Config{Window: time.Minute, MaxRequests: 2}
	ctx := context.Background()

	l.Check(ctx, "k", cfg)
	l.Check(ctx, "k", cfg)
	if r := l.Check(ctx, "k", cfg); r.Allowed {
		t.Fatal("expected denial before window reset")
	}

	*now = now.Add(time.Minute)
	if r := l.Check(ctx, "k", cfg); !r.Allowed || r.Remaining != 1 {
		t.Errorf("post-reset call = {%v %d}, want {true 1}", r.Allowed, r.Remaining)
	}
}

func TestWindowResetExactBoundary(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	l, now := newFakeClockLimiter(start)
	cfg := Config{Window: time.Minute, MaxRequests: 1}
	ctx := context.Background()

	first := l.Check(ctx, "k", cfg)
	if !first.Allowed {
		t.Fatal("first call denied")
	}

	// a request arriving at the precise reset instant starts a fresh window
	*now = first.ResetAt
	r := l.Check(ctx, "k", cfg)
	if !r.Allowed {
		t.Error("boundary call denied, want fresh window")
	}
	if want := first.ResetAt.Add(time.Minute); !r.ResetAt.Equal(want) {
		t.Errorf("boundary reset at %v, want %v", r.ResetAt, want)
	}
}

func TestDeniedDoesNotExtendWindow(t *testing.T) {
	l, _ := newFakeClockLimiter(time.Unix(1_700_000_000, 0))
	cfg := Config{Window: time.Minute, MaxRequests: 1}
	ctx := context.Background()

	first := l.Check(ctx, "k", cfg)
	denied := l.Check(ctx, "k", cfg)
	if denied.Allowed {
		t.Fatal("second call allowed")
	}
	if !denied.ResetAt.Equal(first.ResetAt) {
		t.Errorf("denial moved the window: %v != %v", denied.ResetAt, first.ResetAt)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newFakeClockLimiter(time.Unix(1_700_000_000, 0))
	cfg := Config{Window: time.Minute, MaxRequests: 1}
	ctx := context.Background()

	if r := l.Check(ctx, "a", cfg); !r.Allowed {
		t.Fatal("first key denied")
	}
	if r := l.Check(ctx, "b", cfg); !r.Allowed {
		t.Error("independent key denied")
	}
}

func TestSweep(t *testing.T) {
	l, now := newFakeClockLimiter(time.Unix(1_700_000_000, 0))
	cfg := Config{Window: time.Minute, MaxRequests: 5}
	ctx := context.Background()

	l.Check(ctx, "old", cfg)
	*now = now.Add(30 * time.Second)
	l.Check(ctx, "fresh", cfg)

	*now = now.Add(31 * time.Second) // "old" expired, "fresh" still live
	l.Sweep()

	if got := l.size(); got != 1 {
		t.Errorf("records after sweep = %d, want 1", got)
	}

	// the surviving record still counts against its window
	if r := l.Check(ctx, "fresh", cfg); r.Remaining != 3 {
		t.Errorf("fresh remaining = %d, want 3", r.Remaining)
	}
}
