package gameserver

import (
	"context"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/protocol"
	"github.com/udisondev/tileworld/internal/resperr"
)

// directionDelta maps a wire direction letter to its tile offset.
func directionDelta(dir string) (dx, dy int32, facing model.Facing, ok bool) {
	switch dir {
	case "N":
		return 0, -1, model.FacingNorth, true
	case "S":
		return 0, 1, model.FacingSouth, true
	case "E":
		return 1, 0, model.FacingEast, true
	case "W":
		return -1, 0, model.FacingWest, true
	}
	return 0, 0, 0, false
}

// handleMove implements CMD_MOVE (spec §4.3): one tile step in a
// cardinal direction, rate-limited server-side via Player.CanMove,
// rejected if the target tile is off the collision grid or occupied.
// On success it updates position/facing, persists to the hot store,
// and broadcasts PLAYER_MOVED to observers.
func (h *Handler) handleMove(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	player := client.ActivePlayer()

	dir, ok := payloadString(frame.Payload, "direction")
	if !ok {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing direction"))
	}
	dx, dy, facing, ok := directionDelta(dir)
	if !ok {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "direction must be one of N, S, E, W"))
	}

	if !player.CanMove(h.cfg.Game.MoveCooldown) {
		return errFrame(frame, resperr.Conflict(resperr.CodeMoveBlocked, "movement is on cooldown").
			WithSuggestion("retry_after_cooldown"))
	}

	loc := player.Location()
	targetX, targetY := loc.X+dx, loc.Y+dy

	grid, ok := h.grid(loc.MapID)
	if !ok {
		return systemErrFrame(frame, "move: resolve map", nil)
	}
	if grid.Blocked(targetX, targetY) {
		return errFrame(frame, resperr.Conflict(resperr.CodeMoveBlocked, "target tile is blocked"))
	}
	if h.tileOccupied(ctx, loc.MapID, targetX, targetY, player.ObjectID()) {
		return errFrame(frame, resperr.Conflict(resperr.CodeMoveBlocked, "target tile is occupied"))
	}

	newLoc := loc.WithCoordinates(targetX, targetY).WithFacing(facing)
	player.SetLocation(newLoc)
	player.MarkMoved()

	if err := h.hot.SetPlayerPosition(ctx, player.ObjectID(), targetX, targetY, loc.MapID, facing); err != nil {
		return systemErrFrame(frame, "move: persist position", err)
	}

	if h.broadcast != nil {
		h.broadcast.PlayerMoved(player)
	}

	return successFrame(frame, map[string]any{
		"x":      targetX,
		"y":      targetY,
		"facing": facing.String(),
	})
}

// tileOccupied reports whether any other online player or live entity
// instance currently sits at (x, y) on mapID.
func (h *Handler) tileOccupied(ctx context.Context, mapID string, x, y int32, excludePlayerID string) bool {
	for _, p := range h.clients.PlayersOnMap(mapID) {
		if p.ObjectID() == excludePlayerID {
			continue
		}
		loc := p.Location()
		if loc.X == x && loc.Y == y {
			return true
		}
	}

	entities, err := h.hot.GetMapEntities(ctx, mapID)
	if err != nil {
		return false
	}
	for _, e := range entities {
		if e.State == model.StateDead || e.State == model.StateDying {
			continue
		}
		if e.X == x && e.Y == y {
			return true
		}
	}
	return false
}
