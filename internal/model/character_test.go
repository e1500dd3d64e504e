package model

import "testing"

func newTestCharacter() *Character {
	return NewCharacter("char-1", "goblin", NewLocation(0, 0, "overworld", FacingNorth), 5, 100)
}

func TestNewCharacter_StartsAtFullHP(t *testing.T) {
	c := newTestCharacter()
	if c.CurrentHP() != 100 {
		t.Errorf("CurrentHP() = %d, want 100", c.CurrentHP())
	}
	if c.MaxHP() != 100 {
		t.Errorf("MaxHP() = %d, want 100", c.MaxHP())
	}
	if c.Level() != 5 {
		t.Errorf("Level() = %d, want 5", c.Level())
	}
	if c.IsDead() {
		t.Error("IsDead() = true for a freshly created character")
	}
}

func TestCharacter_SetCurrentHP_Clamps(t *testing.T) {
	c := newTestCharacter()

	c.SetCurrentHP(-5)
	if c.CurrentHP() != 0 {
		t.Errorf("SetCurrentHP(-5) -> CurrentHP() = %d, want 0", c.CurrentHP())
	}

	c.SetCurrentHP(999)
	if c.CurrentHP() != c.MaxHP() {
		t.Errorf("SetCurrentHP(999) -> CurrentHP() = %d, want %d", c.CurrentHP(), c.MaxHP())
	}
}

func TestCharacter_SetMaxHP_ClampsCurrentDown(t *testing.T) {
	c := newTestCharacter()
	c.SetCurrentHP(100)

	c.SetMaxHP(50)
	if c.MaxHP() != 50 {
		t.Errorf("MaxHP() = %d, want 50", c.MaxHP())
	}
	if c.CurrentHP() != 50 {
		t.Errorf("CurrentHP() = %d, want 50 after MaxHP reduced below it", c.CurrentHP())
	}
}

func TestCharacter_HPPercentage(t *testing.T) {
	c := newTestCharacter()
	c.SetCurrentHP(25)

	if got := c.HPPercentage(); got != 0.25 {
		t.Errorf("HPPercentage() = %v, want 0.25", got)
	}
}

func TestCharacter_ReduceCurrentHP_FloorsAtZero(t *testing.T) {
	c := newTestCharacter()

	c.ReduceCurrentHP(30)
	if c.CurrentHP() != 70 {
		t.Errorf("CurrentHP() = %d, want 70", c.CurrentHP())
	}

	c.ReduceCurrentHP(1000)
	if c.CurrentHP() != 0 {
		t.Errorf("CurrentHP() = %d, want 0", c.CurrentHP())
	}
}

func TestCharacter_DoDie_OnlyFirstCallerWins(t *testing.T) {
	c := newTestCharacter()

	if !c.DoDie() {
		t.Error("first DoDie() = false, want true")
	}
	if c.CurrentHP() != 0 {
		t.Errorf("CurrentHP() after DoDie() = %d, want 0", c.CurrentHP())
	}
	if !c.IsDead() {
		t.Error("IsDead() = false after DoDie()")
	}

	if c.DoDie() {
		t.Error("second DoDie() = true, want false")
	}
}

func TestCharacter_ResetDeathOnce_AllowsDyingAgain(t *testing.T) {
	c := newTestCharacter()

	c.DoDie()
	c.ResetDeathOnce()
	c.SetCurrentHP(c.MaxHP())

	if !c.DoDie() {
		t.Error("DoDie() after ResetDeathOnce() = false, want true")
	}
}

func TestCharacter_SetLevel_Clamps(t *testing.T) {
	c := newTestCharacter()

	c.SetLevel(0)
	if c.Level() != 1 {
		t.Errorf("SetLevel(0) -> Level() = %d, want 1", c.Level())
	}

	c.SetLevel(500)
	if c.Level() != 100 {
		t.Errorf("SetLevel(500) -> Level() = %d, want 100", c.Level())
	}
}
