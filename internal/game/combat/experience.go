package combat

// combatSkills are the named skills that earn XP from damage dealt
// (spec §4.6 step 4: "Award XP to combat skills in proportion to damage
// dealt"). attack and strength mirror the attack_bonus/strength_bonus
// fields driving the accuracy and damage rolls, matching the
// original_source skill catalogue's combat/gathering/crafting
// categorization (server/src/schemas/skill.py). Each of them receives
// the full damage-proportional award; the xp is not divided between them.
var combatSkills = []string{"attack", "strength"}

// xpPerDamage is the XP awarded per point of damage dealt, per skill.
const xpPerDamage = 4

// CombatXPAward describes the XP one attack's damage grants, split
// across the combat skills it trains.
type CombatXPAward struct {
	Skill string
	XP    int64
}

// AwardCombatXP computes the XP a landed hit for damage grants across
// the combat skills, to be applied via Player.AddSkillXP by the caller.
func AwardCombatXP(damage int32) []CombatXPAward {
	if damage <= 0 {
		return nil
	}
	xp := int64(damage) * xpPerDamage
	awards := make([]CombatXPAward, 0, len(combatSkills))
	for _, skill := range combatSkills {
		awards = append(awards, CombatXPAward{Skill: skill, XP: xp})
	}
	return awards
}
