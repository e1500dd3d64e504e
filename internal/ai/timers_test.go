package ai

import (
	"testing"
	"time"
)

func TestTimerStoreGetCreatesThenReuses(t *testing.T) {
	store := NewTimerStore()
	a := store.get("inst-1")
	b := store.get("inst-1")
	if a != b {
		t.Fatalf("expected the same timer record on repeated get")
	}
	c := store.get("inst-2")
	if c == a {
		t.Fatalf("expected distinct records for distinct instance IDs")
	}
}

func TestTimerStoreClear(t *testing.T) {
	store := NewTimerStore()
	first := store.get("inst-1")
	first.lastMoveAt = time.Now()
	store.Clear("inst-1")
	second := store.get("inst-1")
	if !second.lastMoveAt.IsZero() {
		t.Fatalf("expected a fresh zero-value record after Clear")
	}
}

func TestResetIdleTimerWithinBounds(t *testing.T) {
	now := time.Now()
	min := 2 * time.Second
	max := 10 * time.Second
	for i := 0; i < 50; i++ {
		got := resetIdleTimer(now, min, max)
		d := got.Sub(now)
		if d < min || d >= max {
			t.Fatalf("resetIdleTimer = %v outside [%v, %v)", d, min, max)
		}
	}
}

func TestResetIdleTimerDegenerateBounds(t *testing.T) {
	now := time.Now()
	got := resetIdleTimer(now, 5*time.Second, 5*time.Second)
	if !got.Equal(now.Add(5 * time.Second)) {
		t.Fatalf("expected max<=min to fall back to now+min, got %v", got)
	}
}

func TestPickWanderTargetWithinRadius(t *testing.T) {
	const spawnX, spawnY, radius int32 = 100, 200, 5
	for i := 0; i < 50; i++ {
		loc := pickWanderTarget(spawnX, spawnY, radius, "overworld")
		if loc.MapID != "overworld" {
			t.Fatalf("expected map id to carry through, got %q", loc.MapID)
		}
		dx := loc.X - spawnX
		dy := loc.Y - spawnY
		if dx < -radius || dx > radius || dy < -radius || dy > radius {
			t.Fatalf("wander target (%d,%d) outside [spawn±%d]", loc.X, loc.Y, radius)
		}
	}
}
