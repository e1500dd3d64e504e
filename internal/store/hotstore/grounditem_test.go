package hotstore

import (
	"testing"
	"time"
)

func TestGroundItemRecord_IsProtected_NoDropperNeverProtected(t *testing.T) {
	rec := groundItemRecord{ProtectionExpiresAt: time.Now().Add(time.Hour)}
	if rec.IsProtected("anyone") {
		t.Error("IsProtected() = true for an entity drop with no dropper, want false")
	}
}

func TestGroundItemRecord_IsProtected_DropperAlwaysAllowed(t *testing.T) {
	rec := groundItemRecord{
		DropperPlayerID:     "player-1",
		ProtectionExpiresAt: time.Now().Add(time.Hour),
	}
	if rec.IsProtected("player-1") {
		t.Error("IsProtected() = true for the original dropper, want false")
	}
}

func TestGroundItemRecord_IsProtected_OthersBlockedWithinWindow(t *testing.T) {
	rec := groundItemRecord{
		DropperPlayerID:     "player-1",
		ProtectionExpiresAt: time.Now().Add(time.Hour),
	}
	if !rec.IsProtected("player-2") {
		t.Error("IsProtected() = false for a non-dropper within the protection window, want true")
	}
}

func TestGroundItemRecord_IsProtected_ExpiresAfterWindow(t *testing.T) {
	rec := groundItemRecord{
		DropperPlayerID:     "player-1",
		ProtectionExpiresAt: time.Now().Add(-time.Minute),
	}
	if rec.IsProtected("player-2") {
		t.Error("IsProtected() = true after the protection window elapsed, want false")
	}
}
