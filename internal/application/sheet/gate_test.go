package sheet

import (
	"context"
	"testing"
	"time"
)

func TestLocalGateExpires(t *testing.T) {
	g := NewLocalGate(time.Minute)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }
	ctx := context.Background()

	if _, ok, _ := g.Acquire(ctx, "s"); !ok {
		t.Fatalf("first acquire should succeed")
	}
	if _, ok, _ := g.Acquire(ctx, "s"); ok {
		t.Fatalf("second acquire should be rejected")
	}
	if _, ok, _ := g.Acquire(ctx, "other"); !ok {
		t.Fatalf("other session should not be blocked")
	}

	now = now.Add(2 * time.Minute)
	token, ok, _ := g.Acquire(ctx, "s")
	if !ok {
		t.Fatalf("expired hold should be reclaimable")
	}
	_ = g.Release(ctx, "s", token)
	if _, ok, _ := g.Acquire(ctx, "s"); !ok {
		t.Fatalf("released hold should be reclaimable")
	}
}

func TestLocalGateStaleReleaseKeepsNewHolder(t *testing.T) {
	g := NewLocalGate(time.Minute)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }
	ctx := context.Background()

	stale, ok, _ := g.Acquire(ctx, "s")
	if !ok {
		t.Fatal("first acquire should succeed")
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := g.Acquire(ctx, "s"); !ok {
		t.Fatal("expired hold should be reclaimable")
	}

	// 超时的生成结束后释放，不应影响新的占用
	_ = g.Release(ctx, "s", stale)
	if _, ok, _ := g.Acquire(ctx, "s"); ok {
		t.Fatal("stale release must not free the current holder")
	}
}
