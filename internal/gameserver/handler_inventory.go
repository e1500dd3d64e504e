package gameserver

import (
	"context"
	"sort"

	"github.com/udisondev/tileworld/internal/constants"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/protocol"
	"github.com/udisondev/tileworld/internal/resperr"
)

// handleInventoryMove implements CMD_INVENTORY_MOVE: swap or relocate
// an item between two inventory slots.
func (h *Handler) handleInventoryMove(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	player := client.ActivePlayer()

	fromSlot, ok1 := payloadInt(frame.Payload, "from_slot")
	toSlot, ok2 := payloadInt(frame.Payload, "to_slot")
	if !ok1 || !ok2 {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing from_slot/to_slot"))
	}

	if err := player.Inventory().MoveItem(int32(fromSlot), int32(toSlot)); err != nil {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, err.Error()))
	}
	if err := h.invrepo.SaveInventory(ctx, player.Inventory()); err != nil {
		return systemErrFrame(frame, "inventory move: save", err)
	}
	return successFrame(frame, map[string]any{"from_slot": fromSlot, "to_slot": toSlot})
}

// handleInventorySort implements CMD_INVENTORY_SORT: compacts occupied
// slots toward slot 0, ordered by template name for a stable,
// deterministic layout.
func (h *Handler) handleInventorySort(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	player := client.ActivePlayer()
	inv := player.Inventory()

	items := inv.Items()
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TemplateName() < items[j].TemplateName()
	})

	for _, item := range items {
		_, slot := item.Location()
		inv.RemoveItem(slot)
	}
	for i, item := range items {
		if err := inv.PlaceItem(item, int32(i)); err != nil {
			return systemErrFrame(frame, "inventory sort: place item", err)
		}
	}

	if err := h.invrepo.SaveInventory(ctx, inv); err != nil {
		return systemErrFrame(frame, "inventory sort: save", err)
	}
	return successFrame(frame, map[string]any{"slots": len(items)})
}

// handleItemDrop implements CMD_ITEM_DROP: removes an item from the
// player's inventory and places it on the ground at their current
// location, subject to the same loot-protection window as a death
// drop (spec §3's ground item shape).
func (h *Handler) handleItemDrop(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	player := client.ActivePlayer()

	slot, ok := payloadInt(frame.Payload, "slot")
	if !ok {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing slot"))
	}

	item := player.Inventory().SlotItem(int32(slot))
	if item == nil {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "slot is empty"))
	}

	removed := player.Inventory().RemoveItem(int32(slot))
	loc := player.Location()
	groundID, err := h.hot.DropGroundItem(ctx, removed.ItemID(), removed.TemplateName(), loc.X, loc.Y,
		removed.Count(), loc.MapID, player.ObjectID(), h.clock.Now(), h.cfg.Game.LootProtectionWindow, h.cfg.Game.GroundItemLifetime)
	if err != nil {
		return systemErrFrame(frame, "item drop: drop ground item", err)
	}
	if err := h.invrepo.SaveInventory(ctx, player.Inventory()); err != nil {
		return systemErrFrame(frame, "item drop: save inventory", err)
	}

	return successFrame(frame, map[string]any{"ground_item_id": groundID, "slot": slot})
}

// handleItemPickup implements CMD_ITEM_PICKUP: validates the ground
// item is on the player's current tile and outside its loot-protection
// window (unless the player is the original dropper), then places it
// in the player's inventory.
func (h *Handler) handleItemPickup(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	player := client.ActivePlayer()

	groundItemID, ok := payloadString(frame.Payload, "ground_item_id")
	if !ok || groundItemID == "" {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing ground_item_id"))
	}

	rec, found, err := h.hot.GetGroundItem(ctx, groundItemID)
	if err != nil {
		return systemErrFrame(frame, "item pickup: lookup", err)
	}
	if !found {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "ground item no longer exists"))
	}

	loc := player.Location()
	if rec.MapID != loc.MapID || rec.X != loc.X || rec.Y != loc.Y {
		return errFrame(frame, resperr.Conflict(resperr.CodeValidationFailed, "ground item is not on your tile"))
	}
	if rec.IsProtected(player.ObjectID()) {
		return errFrame(frame, resperr.Permission(resperr.CodeValidationFailed, "item is still loot-protected").
			WithSuggestion("wait_for_protection_to_expire"))
	}

	picked, found, err := h.hot.PickUpGroundItem(ctx, groundItemID)
	if err != nil {
		return systemErrFrame(frame, "item pickup: remove", err)
	}
	if !found {
		return errFrame(frame, resperr.Conflict(resperr.CodeValidationFailed, "item was already picked up"))
	}

	tpl, ok := h.catalog.ItemTemplate(picked.TemplateName)
	if !ok {
		return systemErrFrame(frame, "item pickup: unknown template", nil)
	}

	remaining, err := player.Inventory().AddStackable(func() (*model.Item, error) {
		return model.NewItem(constants.NewObjectID(), player.ObjectID(), picked.TemplateName, 1)
	}, picked.TemplateName, picked.Quantity, max(tpl.MaxStackSize, 1))
	if err != nil {
		return systemErrFrame(frame, "item pickup: add to inventory", err)
	}
	if remaining > 0 {
		// Partial pickup: re-drop what didn't fit at the same spot.
		if _, err := h.hot.DropGroundItem(ctx, picked.ItemID, picked.TemplateName, loc.X, loc.Y, remaining,
			loc.MapID, player.ObjectID(), h.clock.Now(), 0, h.cfg.Game.GroundItemLifetime); err != nil {
			return systemErrFrame(frame, "item pickup: re-drop remainder", err)
		}
		return errFrame(frame, resperr.Conflict(resperr.CodeAdminInventoryFull, "inventory full, partial pickup only").
			WithDetails(map[string]any{"picked_up": picked.Quantity - remaining, "remaining_on_ground": remaining}))
	}

	if err := h.invrepo.SaveInventory(ctx, player.Inventory()); err != nil {
		return systemErrFrame(frame, "item pickup: save inventory", err)
	}

	return successFrame(frame, map[string]any{
		"template_name": picked.TemplateName,
		"quantity":      picked.Quantity,
	})
}
