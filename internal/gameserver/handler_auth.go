package gameserver

import (
	"context"
	"fmt"

	"github.com/udisondev/tileworld/internal/protocol"
	"github.com/udisondev/tileworld/internal/resperr"
)

// handleAuthenticate implements spec §4.2's first-frame contract: the
// payload's "token" field is redeemed against the bearer-token store
// minted by internal/auth's HTTP login/register endpoints. Success
// binds the player to this client, registers it online, and replies
// RESP_SUCCESS followed by an EVENT_WELCOME carrying the initial
// player snapshot. Failure replies RESP_ERROR; the caller is
// responsible for closing the socket on AUTH_FAILED (spec §4.2).
func (h *Handler) handleAuthenticate(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	client.SetState(StateAuthenticating)

	token, ok := payloadString(frame.Payload, "token")
	if !ok || token == "" {
		client.SetState(StateDisconnected)
		return errFrame(frame, resperr.Validation(resperr.CodeAuthFailed, "missing authentication token"))
	}

	playerID, ok := h.tokens.Redeem(token)
	if !ok {
		client.SetState(StateDisconnected)
		return errFrame(frame, resperr.Validation(resperr.CodeAuthFailed, "invalid or expired token"))
	}

	player, err := h.players.GetByID(ctx, playerID)
	if err != nil {
		client.SetState(StateDisconnected)
		return systemErrFrame(frame, "authenticate: load player", err)
	}
	if player == nil {
		client.SetState(StateDisconnected)
		return errFrame(frame, resperr.Validation(resperr.CodeAuthFailed, "player account no longer exists"))
	}

	inv, err := h.invrepo.LoadInventory(ctx, playerID)
	if err != nil {
		client.SetState(StateDisconnected)
		return systemErrFrame(frame, "authenticate: load inventory", err)
	}
	eq, err := h.invrepo.LoadEquipment(ctx, playerID)
	if err != nil {
		client.SetState(StateDisconnected)
		return systemErrFrame(frame, "authenticate: load equipment", err)
	}
	player.SetInventory(inv)
	player.SetEquipment(eq)

	if err := h.hot.RegisterOnline(ctx, player); err != nil {
		client.SetState(StateDisconnected)
		return errFrame(frame, toResperr(err))
	}

	client.BindPlayer(player)
	h.clients.Register(client)
	client.SetState(StateAuthenticated)

	hash := h.visuals.Register(player.ObjectID(), player.VisualState())

	loc := player.Location()
	welcome := protocol.NewFrame(protocol.MsgEventWelcome, map[string]any{
		"player_id":       player.ObjectID(),
		"username":        player.Username(),
		"role":            string(player.Role()),
		"map_id":          loc.MapID,
		"x":               loc.X,
		"y":               loc.Y,
		"facing":          loc.Facing.String(),
		"current_hp":      player.CurrentHP(),
		"max_hp":          player.MaxHP(),
		"level":           player.Level(),
		"visual_hash":     hash,
		"auto_retaliate":  player.AutoRetaliate(),
	})
	if err := client.Send(welcome); err != nil {
		return systemErrFrame(frame, "authenticate: send welcome", fmt.Errorf("%w", err))
	}

	if h.broadcast != nil {
		h.broadcast.PlayerJoined(player)
	}

	return successFrame(frame, map[string]any{"player_id": player.ObjectID()})
}

// toResperr adapts a hot-store error into a resperr.Error, passing an
// already-typed resperr.Error through and falling back to a system
// error for anything else.
func toResperr(err error) *resperr.Error {
	if rerr, ok := err.(*resperr.Error); ok {
		return rerr
	}
	return resperr.System(resperr.CodeSysInternalError, err.Error(), 1000)
}
