package gameserver

import (
	"context"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/protocol"
	"github.com/udisondev/tileworld/internal/resperr"
)

// handleItemEquip implements CMD_ITEM_EQUIP: moves an inventory item
// into its matching equipment slot, swapping out and returning any
// previously equipped item to the inventory slot it vacated (spec
// §4.3: "atomic swap, stat-total recompute, visual-fingerprint
// invalidation").
func (h *Handler) handleItemEquip(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	player := client.ActivePlayer()

	slot, ok := payloadInt(frame.Payload, "slot")
	if !ok {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing slot"))
	}

	item := player.Inventory().SlotItem(int32(slot))
	if item == nil {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "slot is empty"))
	}

	tpl, ok := h.catalog.ItemTemplate(item.TemplateName())
	if !ok || !tpl.IsEquippable() {
		return errFrame(frame, resperr.Validation(resperr.CodeEquipmentMismatch, "item is not equippable"))
	}
	if tpl.RequiredLevel > player.Level() {
		return errFrame(frame, resperr.Validation(resperr.CodeEquipmentMismatch, "level too low to equip this item"))
	}
	if tpl.RequiredSkill != "" && player.SkillLevel(tpl.RequiredSkill) < tpl.RequiredLevel {
		return errFrame(frame, resperr.Validation(resperr.CodeEquipmentMismatch, "skill level too low to equip this item"))
	}
	if tpl.IsTwoHanded && !player.Equipment().IsEmpty(model.SlotOffHand) {
		return errFrame(frame, resperr.Validation(resperr.CodeEquipmentMismatch, "off-hand must be empty to equip a two-handed item"))
	}

	player.Inventory().RemoveItem(int32(slot))
	previous := player.Equipment().Equip(tpl.EquipmentSlot, item)
	if previous != nil {
		if err := player.Inventory().PlaceItem(previous, int32(slot)); err != nil {
			// Slot is guaranteed free (we just vacated it); this would
			// only happen under a racing concurrent mutation on the
			// same player, which per-player command ordering rules out.
			return systemErrFrame(frame, "item equip: restore previous item", err)
		}
	}

	if err := h.invrepo.SaveInventory(ctx, player.Inventory()); err != nil {
		return systemErrFrame(frame, "item equip: save inventory", err)
	}
	if err := h.invrepo.SaveEquipment(ctx, player.Equipment()); err != nil {
		return systemErrFrame(frame, "item equip: save equipment", err)
	}

	hash := h.visuals.Register(player.ObjectID(), player.VisualState())
	if h.broadcast != nil {
		h.broadcast.AppearanceUpdated(player, hash)
	}

	return successFrame(frame, map[string]any{
		"slot":        string(tpl.EquipmentSlot),
		"visual_hash": hash,
	})
}

// handleItemUnequip implements CMD_ITEM_UNEQUIP: removes an equipped
// item and places it back into the first free inventory slot.
func (h *Handler) handleItemUnequip(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	player := client.ActivePlayer()

	slotName, ok := payloadString(frame.Payload, "slot")
	if !ok || slotName == "" {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing slot"))
	}

	if player.Inventory().IsFull() {
		return errFrame(frame, resperr.Conflict(resperr.CodeSlotOccupied, "inventory is full"))
	}

	slot := model.EquipmentSlot(slotName)
	item := player.Equipment().Unequip(slot)
	if item == nil {
		return errFrame(frame, resperr.Validation(resperr.CodeEquipmentMismatch, "slot is empty"))
	}

	freeSlot := firstFreeInventorySlot(player.Inventory())
	if freeSlot < 0 {
		// Should not happen after the IsFull check above; put it back.
		player.Equipment().Equip(slot, item)
		return systemErrFrame(frame, "item unequip: no free slot", nil)
	}
	if err := player.Inventory().PlaceItem(item, freeSlot); err != nil {
		return systemErrFrame(frame, "item unequip: place item", err)
	}

	if err := h.invrepo.SaveInventory(ctx, player.Inventory()); err != nil {
		return systemErrFrame(frame, "item unequip: save inventory", err)
	}
	if err := h.invrepo.SaveEquipment(ctx, player.Equipment()); err != nil {
		return systemErrFrame(frame, "item unequip: save equipment", err)
	}

	hash := h.visuals.Register(player.ObjectID(), player.VisualState())
	if h.broadcast != nil {
		h.broadcast.AppearanceUpdated(player, hash)
	}

	return successFrame(frame, map[string]any{"slot": freeSlot, "visual_hash": hash})
}

// firstFreeInventorySlot returns the lowest unoccupied slot index, or -1
// if every slot is taken.
func firstFreeInventorySlot(inv *model.Inventory) int32 {
	for i := int32(0); i < model.InventorySlots; i++ {
		if inv.SlotItem(i) == nil {
			return i
		}
	}
	return -1
}
