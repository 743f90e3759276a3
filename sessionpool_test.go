package quantummeadow

import (
	"fmt"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func pooled(pool *SessionPool, id string) bool {
	pool.mu.RLock()
	defer pool.mu.RUnlock()
	_, ok := pool.sessions[id]
	return ok
}

// TestSessionPoolGetReuses verifies the same id maps to the same controller.
func TestSessionPoolGetReuses(t *testing.T) {
	pool := NewSessionPool(&fakeFetcher{}, 0)
	first := pool.Get("a")
	if pool.Get("a") != first {
		t.Fatalf("expected same controller for same id")
	}
	if pool.Get("b") == first {
		t.Fatalf("expected distinct controllers for distinct ids")
	}
	if pool.Size() != 2 {
		t.Fatalf("expected 2 sessions, got %d", pool.Size())
	}
	if first.State().Phase() != PhaseStart {
		t.Fatalf("new session should start at the start screen")
	}
}

// TestSessionPoolEvictsOldest verifies the oldest session goes when full.
func TestSessionPoolEvictsOldest(t *testing.T) {
	pool := NewSessionPool(&fakeFetcher{}, 3)
	for i := 0; i < 4; i++ {
		pool.Get(fmt.Sprintf("s%d", i))
	}
	if pool.Size() != 3 {
		t.Fatalf("expected 3 sessions, got %d", pool.Size())
	}
	if pooled(pool, "s0") {
		t.Fatalf("expected s0 evicted")
	}
	if !pooled(pool, "s3") {
		t.Fatalf("expected s3 present")
	}
}

// TestSessionPoolSweep verifies idle sessions are dropped.
func TestSessionPoolSweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	pool := NewSessionPool(&fakeFetcher{}, 0)
	pool.now = clock.Now

	pool.Get("old")
	clock.Advance(90 * time.Minute)
	pool.Get("fresh")
	clock.Advance(40 * time.Minute)

	if removed := pool.Sweep(2 * time.Hour); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if pooled(pool, "old") {
		t.Fatalf("expected old session swept")
	}
	if !pooled(pool, "fresh") {
		t.Fatalf("expected fresh session kept")
	}
}

// TestSessionPoolSweepTouch verifies Get refreshes the idle timer.
func TestSessionPoolSweepTouch(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	pool := NewSessionPool(&fakeFetcher{}, 0)
	pool.now = clock.Now

	pool.Get("a")
	clock.Advance(time.Hour)
	pool.Get("a")
	clock.Advance(time.Hour)

	if removed := pool.Sweep(90 * time.Minute); removed != 0 {
		t.Fatalf("expected nothing swept, got %d", removed)
	}
}
