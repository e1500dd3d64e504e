package model

// EntityState is the AI state machine driving an NPC/monster instance.
type EntityState int32

const (
	// StateIdle — standing at or near spawn, no target, not wandering.
	StateIdle EntityState = iota
	// StateWander — moving to a randomly chosen tile inside wander_radius.
	StateWander
	// StateCombat — has a target player, in range or chasing.
	StateCombat
	// StateReturning — lost its target (death, LOS timeout, leash) and is
	// pathing back to its spawn point.
	StateReturning
	// StateDying — death animation/grace window; no longer targetable.
	StateDying
	// StateDead — in the respawn queue; absent from the active entity set.
	StateDead
)

// String returns the wire-visible lowercase state name (spec §3).
func (s EntityState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWander:
		return "wander"
	case StateCombat:
		return "combat"
	case StateReturning:
		return "returning"
	case StateDying:
		return "dying"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// ParseEntityState parses the wire string form back into an EntityState.
func ParseEntityState(s string) (EntityState, bool) {
	switch s {
	case "idle":
		return StateIdle, true
	case "wander":
		return StateWander, true
	case "combat":
		return StateCombat, true
	case "returning":
		return StateReturning, true
	case "dying":
		return StateDying, true
	case "dead":
		return StateDead, true
	default:
		return 0, false
	}
}
