package combat

import (
	"math"
	"math/rand/v2"
)

// baseHitChance is the starting accuracy before the attack/defence and
// level differentials are applied (spec §4.6 step 2); the adjusted
// chance is then clamped to [minHitChance, maxHitChance].
const (
	baseHitChance = 0.75
	minHitChance  = 0.05
	maxHitChance  = 0.95
)

// statDeltaWeight and levelDeltaWeight scale how much a stat or level
// advantage shifts accuracy away from the base chance.
const (
	statDeltaWeight  = 0.01
	levelDeltaWeight = 0.01
)

// ComputeAccuracy rolls whether an attack with the given attack/defence
// bonuses and levels lands, per spec §4.6 step 2: "accuracy roll from
// attacker's attack_bonus/defender's physical_defence_bonus and levels".
func ComputeAccuracy(attackBonus, defenceBonus, attackerLevel, defenderLevel int32) bool {
	chance := baseHitChance +
		float64(attackBonus-defenceBonus)*statDeltaWeight +
		float64(attackerLevel-defenderLevel)*levelDeltaWeight
	chance = clamp(chance, minHitChance, maxHitChance)
	return rand.Float64() < chance
}

// ComputeDamage rolls damage for a landed hit from strength_bonus and
// strength_level (spec §4.6 step 3), capped at remaining target HP. The
// random variance mirrors a weapon-independent swing roll: ±(5+√level)%.
func ComputeDamage(strengthBonus, strengthLevel, targetCurrentHP int32) int32 {
	base := float64(strengthBonus + strengthLevel)
	base *= randomSwingMultiplier(strengthLevel)

	damage := int32(math.Round(base))
	if damage < 1 {
		damage = 1
	}
	if damage > targetCurrentHP {
		damage = targetCurrentHP
	}
	return damage
}

// randomSwingMultiplier returns a multiplier in roughly
// [1-(5+√level)/100, 1+(5+√level)/100], widening variance at high level.
func randomSwingMultiplier(level int32) float64 {
	if level < 0 {
		level = 0
	}
	spread := (5 + math.Sqrt(float64(level))) / 100.0
	return 1.0 - spread + rand.Float64()*2*spread
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
