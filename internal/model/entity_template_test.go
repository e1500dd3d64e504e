package model

import "testing"

func TestEntityTemplate_MaxHP_DefaultsWhenAbsent(t *testing.T) {
	tpl := EntityTemplate{Name: "slime", Skills: Skills{}}
	if got := tpl.MaxHP(); got != DefaultHitpoints {
		t.Errorf("MaxHP() = %d, want %d", got, DefaultHitpoints)
	}
}

func TestEntityTemplate_MaxHP_UsesSkillsHitpoints(t *testing.T) {
	tpl := EntityTemplate{Name: "goblin", Skills: Skills{Hitpoints: 40}}
	if got := tpl.MaxHP(); got != 40 {
		t.Errorf("MaxHP() = %d, want 40", got)
	}
}

func TestEntityTemplate_IsAggressive(t *testing.T) {
	aggressive := EntityTemplate{Behavior: BehaviorAggressive}
	passive := EntityTemplate{Behavior: BehaviorPassive}

	if !aggressive.IsAggressive() {
		t.Error("expected aggressive template to report IsAggressive() = true")
	}
	if passive.IsAggressive() {
		t.Error("expected passive template to report IsAggressive() = false")
	}
}
