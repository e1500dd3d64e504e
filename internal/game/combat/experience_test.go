package combat

import "testing"

func TestAwardCombatXPSplitsAcrossSkills(t *testing.T) {
	awards := AwardCombatXP(10)
	if len(awards) != len(combatSkills) {
		t.Fatalf("got %d awards, want %d", len(awards), len(combatSkills))
	}
	for _, a := range awards {
		if a.XP != 10*xpPerDamage {
			t.Fatalf("skill %s XP = %d, want %d", a.Skill, a.XP, 10*xpPerDamage)
		}
	}
}

func TestAwardCombatXPZeroDamage(t *testing.T) {
	if awards := AwardCombatXP(0); awards != nil {
		t.Fatalf("expected no awards for zero damage, got %v", awards)
	}
}
