package combat

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/udisondev/tileworld/internal/model"
)

// maxDeathDropSlots caps how many occupied inventory slots are rolled into
// ground drops on death, keeping the loot pile bounded even for a full
// 28-slot inventory.
const maxDeathDropSlots = 28

// deathDropFraction is the rough share of occupied slots dropped on death
// (spec §4.6 step 5: "drop a subset of inventory as ground items").
const deathDropFraction = 0.5

// GroundItemDropper is the hot-store dependency drop.go needs, satisfied
// by *hotstore.Store. Scoped narrowly so this package never imports the
// store package directly.
type GroundItemDropper interface {
	DropGroundItem(ctx context.Context, itemID, templateName string, x, y, quantity int32, mapID, dropperPlayerID string, dropTick int64, protectionWindow, despawnAfter time.Duration) (string, error)
}

// DropDeathInventory removes a random subset of the dying player's
// inventory and drops each as a ground item at their death location, per
// spec §4.6 step 5. It returns the template names dropped, for logging or
// a death-broadcast payload. The subset is capped by maxDeathDropSlots and
// scaled by deathDropFraction; an empty inventory drops nothing.
func DropDeathInventory(ctx context.Context, dropper GroundItemDropper, player *model.Player, deathTick int64, protectionWindow, despawnAfter time.Duration) ([]string, error) {
	inv := player.Inventory()
	items := inv.Items()
	if len(items) == 0 {
		return nil, nil
	}

	n := int(float64(len(items))*deathDropFraction + 0.5)
	if n < 1 {
		n = 1
	}
	if n > len(items) {
		n = len(items)
	}
	if n > maxDeathDropSlots {
		n = maxDeathDropSlots
	}

	rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	toDrop := items[:n]

	loc := player.Location()
	dropped := make([]string, 0, n)
	for _, item := range toDrop {
		_, slot := item.Location()
		removed := inv.RemoveItem(slot)
		if removed == nil {
			continue
		}
		if _, err := dropper.DropGroundItem(ctx, removed.ItemID(), removed.TemplateName(), loc.X, loc.Y, removed.Count(),
			loc.MapID, player.ObjectID(), deathTick, protectionWindow, despawnAfter); err != nil {
			return dropped, fmt.Errorf("dropping %s on death: %w", removed.TemplateName(), err)
		}
		dropped = append(dropped, removed.TemplateName())
	}
	return dropped, nil
}
