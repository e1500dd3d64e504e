package combat

import (
	"context"
	"testing"
	"time"

	"github.com/udisondev/tileworld/internal/model"
)

type fakeDropper struct {
	drops int
}

func (f *fakeDropper) DropGroundItem(ctx context.Context, itemID, templateName string, x, y, quantity int32, mapID, dropperPlayerID string, dropTick int64, protectionWindow, despawnAfter time.Duration) (string, error) {
	f.drops++
	return "ground-" + itemID, nil
}

func newTestPlayer(t *testing.T) *model.Player {
	t.Helper()
	p, err := model.NewPlayer("player-1", "tester", "hash", loc(5, 5), 100)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	return p
}

func TestDropDeathInventoryEmpty(t *testing.T) {
	p := newTestPlayer(t)
	dropper := &fakeDropper{}
	dropped, err := DropDeathInventory(context.Background(), dropper, p, 1, time.Second, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dropped != nil {
		t.Fatalf("expected no drops from empty inventory, got %v", dropped)
	}
	if dropper.drops != 0 {
		t.Fatalf("dropper called %d times, want 0", dropper.drops)
	}
}

func TestDropDeathInventoryDropsSubset(t *testing.T) {
	p := newTestPlayer(t)
	inv := p.Inventory()
	for i := int32(0); i < 4; i++ {
		item, err := model.NewItem("item-"+string(rune('a'+i)), p.ObjectID(), "bronze_sword", 1)
		if err != nil {
			t.Fatalf("NewItem: %v", err)
		}
		if err := inv.PlaceItem(item, i); err != nil {
			t.Fatalf("PlaceItem: %v", err)
		}
	}

	dropper := &fakeDropper{}
	dropped, err := DropDeathInventory(context.Background(), dropper, p, 1, time.Second, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dropped) == 0 {
		t.Fatalf("expected at least one drop from a 4-item inventory")
	}
	if dropper.drops != len(dropped) {
		t.Fatalf("dropper called %d times, want %d", dropper.drops, len(dropped))
	}
	if remaining := inv.Count(); remaining != 4-len(dropped) {
		t.Fatalf("inventory count = %d, want %d", remaining, 4-len(dropped))
	}
}
