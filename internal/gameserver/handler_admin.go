package gameserver

import (
	"context"

	"github.com/udisondev/tileworld/internal/constants"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/protocol"
	"github.com/udisondev/tileworld/internal/resperr"
)

const (
	adminGiveMinQty = 1
	adminGiveMaxQty = 1000
)

// handleAdminGive implements CMD_ADMIN_GIVE (spec §4.3): an
// admin-role-only command that grants a quantity of an item template
// to a named player, online or offline.
func (h *Handler) handleAdminGive(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	admin := client.ActivePlayer()
	if admin.Role() != model.RoleAdmin {
		return errFrame(frame, resperr.Permission(resperr.CodeAdminNotAuthorized, "admin role required"))
	}

	targetName, ok := payloadString(frame.Payload, "target_username")
	if !ok || targetName == "" {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing target_username"))
	}
	templateName, ok := payloadString(frame.Payload, "item_template")
	if !ok || templateName == "" {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing item_template"))
	}
	qty, ok := payloadInt(frame.Payload, "quantity")
	if !ok || qty < adminGiveMinQty || qty > adminGiveMaxQty {
		return errFrame(frame, resperr.Validation(resperr.CodeAdminInvalidQty, "quantity must be between 1 and 1000"))
	}

	tpl, ok := h.catalog.ItemTemplate(templateName)
	if !ok {
		return errFrame(frame, resperr.Validation(resperr.CodeAdminItemNotFound, "unknown item template"))
	}
	maxStack := tpl.MaxStackSize
	if maxStack < 1 {
		maxStack = 1
	}

	if onlineClient := h.clients.FindByUsername(targetName); onlineClient != nil && onlineClient.ActivePlayer() != nil {
		online := onlineClient.ActivePlayer()
		remaining, err := online.Inventory().AddStackable(func() (*model.Item, error) {
			return model.NewItem(constants.NewObjectID(), online.ObjectID(), templateName, 1)
		}, templateName, int32(qty), maxStack)
		if err != nil {
			return systemErrFrame(frame, "admin give: add to inventory", err)
		}
		if remaining > 0 {
			return errFrame(frame, resperr.Conflict(resperr.CodeAdminInventoryFull, "target inventory is full").
				WithDetails(map[string]any{"granted": qty - int64(remaining), "remaining": remaining}))
		}
		if err := h.invrepo.SaveInventory(ctx, online.Inventory()); err != nil {
			return systemErrFrame(frame, "admin give: save inventory", err)
		}
		_ = onlineClient.Send(protocol.NewFrame(protocol.MsgEventGameUpdate, map[string]any{
			"reason": "admin_give",
			"item":   templateName,
			"qty":    qty,
		}))
		return successFrame(frame, map[string]any{"target": targetName, "item": templateName, "quantity": qty})
	}

	target, err := h.players.GetByUsername(ctx, targetName)
	if err != nil {
		return systemErrFrame(frame, "admin give: lookup target", err)
	}
	if target == nil {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "target player does not exist"))
	}

	inv, err := h.invrepo.LoadInventory(ctx, target.ObjectID())
	if err != nil {
		return systemErrFrame(frame, "admin give: load target inventory", err)
	}
	remaining, err := inv.AddStackable(func() (*model.Item, error) {
		return model.NewItem(constants.NewObjectID(), target.ObjectID(), templateName, 1)
	}, templateName, int32(qty), maxStack)
	if err != nil {
		return systemErrFrame(frame, "admin give: add to inventory", err)
	}
	if remaining > 0 {
		return errFrame(frame, resperr.Conflict(resperr.CodeAdminInventoryFull, "target inventory is full").
			WithDetails(map[string]any{"granted": qty - int64(remaining), "remaining": remaining}))
	}
	if err := h.invrepo.SaveInventory(ctx, inv); err != nil {
		return systemErrFrame(frame, "admin give: save inventory", err)
	}

	return successFrame(frame, map[string]any{"target": targetName, "item": templateName, "quantity": qty})
}

