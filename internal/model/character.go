package model

import "sync"

// Character is the shared base for anything with HP and a level:
// players and NPC/monster instances alike.
type Character struct {
	*WorldObject

	level     int32
	currentHP int32
	maxHP     int32

	deathOnce sync.Once // guards DoDie against double execution under concurrent damage
}

// NewCharacter creates a character at full HP.
func NewCharacter(objectID, name string, loc Location, level, maxHP int32) *Character {
	return &Character{
		WorldObject: NewWorldObject(objectID, name, loc),
		level:       level,
		currentHP:   maxHP,
		maxHP:       maxHP,
	}
}

// CurrentHP returns current HP.
func (c *Character) CurrentHP() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentHP
}

// MaxHP returns max HP.
func (c *Character) MaxHP() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxHP
}

// SetCurrentHP sets current HP, clamped to [0, maxHP].
func (c *Character) SetCurrentHP(hp int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hp < 0 {
		hp = 0
	}
	if hp > c.maxHP {
		hp = c.maxHP
	}
	c.currentHP = hp
}

// SetMaxHP sets max HP and clamps current HP down if it now exceeds it.
func (c *Character) SetMaxHP(maxHP int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if maxHP < 1 {
		maxHP = 1
	}
	c.maxHP = maxHP
	if c.currentHP > c.maxHP {
		c.currentHP = c.maxHP
	}
}

// IsDead reports whether HP has reached zero.
func (c *Character) IsDead() bool {
	return c.CurrentHP() <= 0
}

// HPPercentage returns current/max HP in [0.0, 1.0].
func (c *Character) HPPercentage() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.maxHP == 0 {
		return 0.0
	}
	return float64(c.currentHP) / float64(c.maxHP)
}

// Level returns the character's level.
func (c *Character) Level() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

// SetLevel sets the character's level, clamped to [1, 100].
func (c *Character) SetLevel(level int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if level < 1 {
		level = 1
	}
	if level > 100 {
		level = 100
	}
	c.level = level
}

// ReduceCurrentHP reduces HP by damage, floored at 0. Does not decide
// death or notify anything — that is the combat layer's job, to avoid
// an import cycle from model back into game/combat or ai.
func (c *Character) ReduceCurrentHP(damage int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentHP = max(c.currentHP-damage, 0)
}

// DoDie marks the character dead. Returns true if this call performed
// the transition (first caller wins); subsequent calls return false.
// sync.Once guards against two goroutines delivering the killing blow
// concurrently.
func (c *Character) DoDie() bool {
	executed := false
	c.deathOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.currentHP = 0
		executed = true
	})
	return executed
}

// ResetDeathOnce rearms the death guard. Must be called on respawn
// before the character can die again.
func (c *Character) ResetDeathOnce() {
	c.deathOnce = sync.Once{}
}
