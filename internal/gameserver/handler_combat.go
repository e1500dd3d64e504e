package gameserver

import (
	"context"

	"github.com/udisondev/tileworld/internal/protocol"
	"github.com/udisondev/tileworld/internal/resperr"
)

// handleAttack implements CMD_ATTACK (spec §4.3/§4.6): resolves the
// target as either a live entity instance or another online player,
// defers range/LOS/accuracy/damage resolution to combat.Manager, and
// broadcasts the result as EVENT_COMBAT_ACTION. Attack-cooldown
// enforcement mirrors CMD_MOVE's rate limit via Player.CanAttack.
func (h *Handler) handleAttack(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	attacker := client.ActivePlayer()

	targetID, ok := payloadString(frame.Payload, "target_id")
	if !ok || targetID == "" {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing target_id"))
	}

	if !attacker.CanAttack(h.cfg.AI.AttackInterval) {
		return errFrame(frame, resperr.Conflict(resperr.CodeMoveBlocked, "attack is on cooldown"))
	}

	loc := attacker.Location()
	grid, ok := h.grid(loc.MapID)
	if !ok {
		return systemErrFrame(frame, "attack: resolve map", nil)
	}

	attacker.MarkAttack()
	now := h.clock.Now()

	if inst, found, err := h.hot.GetEntityInstance(ctx, targetID); err == nil && found {
		result, err := h.combat.ExecuteAttackOnEntity(ctx, attacker, inst, now, grid)
		if err != nil {
			return errFrame(frame, toResperr(err))
		}
		if h.broadcast != nil {
			h.broadcast.CombatAction(attacker, result.TargetID, result.Damage, result.Miss, result.TargetDied)
		}
		return successFrame(frame, map[string]any{
			"target_id": result.TargetID,
			"damage":    result.Damage,
			"miss":      result.Miss,
			"killed":    result.TargetDied,
		})
	}

	target, found := h.clients.PlayerByID(targetID)
	if !found {
		return errFrame(frame, resperr.Validation(resperr.CodeTargetNotAttackable, "target not found"))
	}
	result, err := h.combat.ExecuteAttackOnPlayer(ctx, attacker, target, now, grid)
	if err != nil {
		return errFrame(frame, toResperr(err))
	}
	if h.broadcast != nil {
		h.broadcast.CombatAction(attacker, result.TargetID, result.Damage, result.Miss, result.TargetDied)
	}
	if result.TargetDied && h.broadcast != nil {
		h.broadcast.PlayerDied(target)
	}
	return successFrame(frame, map[string]any{
		"target_id": result.TargetID,
		"damage":    result.Damage,
		"miss":      result.Miss,
		"killed":    result.TargetDied,
	})
}

// handleToggleAutoRetaliate implements CMD_TOGGLE_AUTO_RETALIATE (spec
// §4.6): flips the player's auto-retaliation flag, consulted by
// combat.Manager.ExecuteEntityAttackOnPlayer when an entity hits the
// player while the player has no current target.
func (h *Handler) handleToggleAutoRetaliate(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	player := client.ActivePlayer()
	player.SetAutoRetaliate(!player.AutoRetaliate())
	return successFrame(frame, map[string]any{"auto_retaliate": player.AutoRetaliate()})
}
