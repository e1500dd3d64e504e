package combat

import (
	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/resperr"
)

// MeleeRange is the default attack range (Chebyshev tiles) for an
// unarmed or melee-equipped attacker.
const MeleeRange int32 = 1

// RangedRange is the attack range for an attacker whose equipped weapon
// carries a ranged-attack bonus (spec §3's item stats vector has no
// explicit range field, so range is derived from the ranged_atk bonus
// being nonzero — a bow-class weapon).
const RangedRange int32 = 6

// AttackRangeFor returns the tile range an attacker with the given
// combat stats can strike at.
func AttackRangeFor(stats model.ItemStats) int32 {
	if stats.RangedAtk > 0 {
		return RangedRange
	}
	return MeleeRange
}

// ValidateTarget checks that target is attackable by attackerLoc, per
// spec §4.3's CMD_ATTACK handler: exists, alive, attackable, in range,
// in line of sight. grid is the attacker's current map's collision grid;
// nil grid skips the LOS check (used when the map isn't loaded, e.g. in
// unit tests exercising only range arithmetic).
func ValidateTarget(attackerLoc, targetLoc model.Location, targetDead, targetAttackable bool, attackRange int32, grid geo.Grid) error {
	if attackerLoc.MapID != targetLoc.MapID {
		return resperr.Validation(resperr.CodeTargetOutOfRange, "target is on a different map")
	}
	if targetDead {
		return resperr.Conflict(resperr.CodeTargetNotAttackable, "target is already dead")
	}
	if !targetAttackable {
		return resperr.Validation(resperr.CodeTargetNotAttackable, "target cannot be attacked")
	}
	if !attackerLoc.WithinChebyshev(targetLoc, attackRange) {
		return resperr.Validation(resperr.CodeTargetOutOfRange, "target is out of attack range")
	}
	if grid != nil {
		start := geo.Tile{X: attackerLoc.X, Y: attackerLoc.Y}
		end := geo.Tile{X: targetLoc.X, Y: targetLoc.Y}
		if !geo.HasLineOfSight(grid, start, end) {
			return resperr.Validation(resperr.CodeTargetOutOfRange, "no line of sight to target")
		}
	}
	return nil
}
