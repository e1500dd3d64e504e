package model

import "github.com/udisondev/tileworld/internal/visual"

// EntityKind distinguishes the two entity template variants (spec §3).
type EntityKind int32

const (
	EntityKindMonster EntityKind = iota
	EntityKindHumanoidNPC
)

// Behavior governs how an entity instance reacts to nearby players.
type Behavior string

const (
	BehaviorPassive    Behavior = "passive"
	BehaviorNeutral    Behavior = "neutral"
	BehaviorAggressive Behavior = "aggressive"
	BehaviorGuard      Behavior = "guard"
	BehaviorMerchant   Behavior = "merchant"
	BehaviorQuestGiver Behavior = "quest_giver"
)

// Skills is the flat stat vector an entity template's combat behavior
// is derived from.
type Skills struct {
	Attack     int32
	Strength   int32
	Defence    int32
	Hitpoints  int32
}

// DefaultHitpoints is used when a template's skills.hitpoints is absent.
const DefaultHitpoints = 10

// EntityTemplate is the compile-time-equivalent reference row synced to
// the database at startup: either a Monster (innate stats) or a
// Humanoid NPC (stats derived from equipped items).
type EntityTemplate struct {
	Name             string
	DisplayName      string
	Kind             EntityKind
	Behavior         Behavior
	Level            int32
	Skills           Skills
	IsAttackable     bool
	Appearance       *visual.Appearance // set only for EntityKindHumanoidNPC
	EquippedItems    []string           // item names, set only for EntityKindHumanoidNPC
	SpriteSheetID    string
	AggroRadius      int32
	DisengageRadius  int32
	RespawnTime      int32 // seconds
	XPReward         int64
}

// MaxHP returns the template's derived max HP: skills.hitpoints, or
// DefaultHitpoints if that field is zero/unset (spec §3).
func (t EntityTemplate) MaxHP() int32 {
	if t.Skills.Hitpoints > 0 {
		return t.Skills.Hitpoints
	}
	return DefaultHitpoints
}

// IsAggressive reports whether this template's behavior causes it to
// initiate combat against nearby players unprompted.
func (t EntityTemplate) IsAggressive() bool {
	return t.Behavior == BehaviorAggressive
}
