package combat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/resperr"
)

// EntityTemplateLookup resolves an entity template by name, so this
// package never imports the postgres template repository directly.
type EntityTemplateLookup interface {
	EntityTemplate(name string) (model.EntityTemplate, bool)
}

// deathAnimationWindow is how long a killed entity instance stays in
// model.StateDying (observable, not targetable) before it actually
// despawns and enters the respawn queue (spec §4.6 step 5: "set state
// to dying for a brief death-animation window, then dead").
const deathAnimationWindow = 2 * time.Second

// ItemStatsLookup resolves an item template's stat vector by name, used
// to total a player's equipped-gear bonuses.
type ItemStatsLookup interface {
	ItemStats(templateName string) (model.ItemStats, bool)
}

// EntityStore is the hot-store subset Manager needs to mutate entity
// instances, satisfied by *hotstore.Store.
type EntityStore interface {
	UpdateEntityHp(ctx context.Context, instanceID string, currentHP int32) error
	SetEntityState(ctx context.Context, instanceID string, state model.EntityState, targetPlayerID string) error
	DespawnEntity(ctx context.Context, instanceID string, deathTick, respawnDelayTicks int64) error
	GetEntitiesTargetingPlayer(ctx context.Context, playerID string) ([]model.EntityInstance, error)
	ClearPlayerAsTarget(ctx context.Context, playerID string) error
}

// HitResult is one attack's outcome, observable by tests via
// Manager.SetHitObserver and used by the caller (tick scheduler) to build
// the COMBAT_ACTION broadcast.
type HitResult struct {
	AttackerID string
	TargetID   string
	Damage     int32
	Miss       bool
	TargetDied bool
	XPAwards   []CombatXPAward
}

// AttackProfile is the resolved combat-relevant stat snapshot for one
// side of an attack (spec §4.6: attack_bonus / strength_bonus /
// physical_defence_bonus / level).
type AttackProfile struct {
	AttackBonus   int32
	StrengthBonus int32
	DefenceBonus  int32
	Level         int32
	Range         int32
}

// Manager coordinates attack resolution: validation, accuracy/damage
// rolls, XP awards, and death handling (state transition, respawn
// enqueue, player-death inventory drop, retarget cleanup). It holds no
// packet-framing knowledge; broadcastFunc lets the tick scheduler publish
// COMBAT_ACTION without this package importing gameserver (avoids the
// model → combat → gameserver import cycle the teacher also avoided).
type Manager struct {
	templates   EntityTemplateLookup
	itemStats   ItemStatsLookup
	entityStore EntityStore
	dropper     GroundItemDropper

	hotHz int // ticks per second, for RespawnTime(seconds) → ticks conversion

	deathProtectionWindow time.Duration
	groundItemLifetime    time.Duration
	deathAnimationWindow  time.Duration

	broadcastFunc func(HitResult)
	hitObserver   func(HitResult)
}

// NewManager builds a combat Manager. hotHz is the tick scheduler's hot
// cadence (config.TickConfig.HotHz), used to convert a template's
// RespawnTime (seconds) into the respawn-queue's tick units.
func NewManager(templates EntityTemplateLookup, itemStats ItemStatsLookup, entityStore EntityStore, dropper GroundItemDropper, hotHz int, deathProtectionWindow, groundItemLifetime time.Duration) *Manager {
	return &Manager{
		templates:             templates,
		itemStats:             itemStats,
		entityStore:           entityStore,
		dropper:               dropper,
		hotHz:                 hotHz,
		deathProtectionWindow: deathProtectionWindow,
		groundItemLifetime:    groundItemLifetime,
		deathAnimationWindow:  deathAnimationWindow,
	}
}

// SetDeathAnimationWindow overrides the dying-state window before an
// entity despawns, mainly so tests don't need to wait out the real
// default.
func (m *Manager) SetDeathAnimationWindow(d time.Duration) {
	m.deathAnimationWindow = d
}

// SetBroadcastFunc sets the callback invoked with every resolved attack,
// hit or miss, so the caller can publish it to nearby clients.
func (m *Manager) SetBroadcastFunc(fn func(HitResult)) {
	m.broadcastFunc = fn
}

// SetHitObserver sets a callback for observing attack results in tests.
func (m *Manager) SetHitObserver(fn func(HitResult)) {
	m.hitObserver = fn
}

// PlayerProfile resolves a player's combat stats from their equipped
// gear's stat totals (spec §3's Equipment model) and character level.
func (m *Manager) PlayerProfile(p *model.Player) AttackProfile {
	stats := p.Equipment().StatTotals(m.itemStats.ItemStats)
	return AttackProfile{
		AttackBonus:   stats.Attack,
		StrengthBonus: stats.Strength,
		DefenceBonus:  stats.PhysicalDef,
		Level:         p.Level(),
		Range:         AttackRangeFor(stats),
	}
}

// EntityProfile resolves an entity template's innate combat stats.
func (m *Manager) EntityProfile(tpl model.EntityTemplate) AttackProfile {
	return AttackProfile{
		AttackBonus:   tpl.Skills.Attack,
		StrengthBonus: tpl.Skills.Strength,
		DefenceBonus:  tpl.Skills.Defence,
		Level:         tpl.Level,
		Range:         MeleeRange,
	}
}

// resolveHit validates range/LOS, rolls accuracy and (on a hit) damage,
// and returns the damage dealt (0 on a miss).
func resolveHit(attackerLoc, targetLoc model.Location, targetDead, targetAttackable bool, attacker, defender AttackProfile, targetCurrentHP int32, grid geo.Grid) (damage int32, miss bool, err error) {
	if err := ValidateTarget(attackerLoc, targetLoc, targetDead, targetAttackable, attacker.Range, grid); err != nil {
		return 0, false, err
	}
	if !ComputeAccuracy(attacker.AttackBonus, defender.DefenceBonus, attacker.Level, defender.Level) {
		return 0, true, nil
	}
	return ComputeDamage(attacker.StrengthBonus, attacker.Level, targetCurrentHP), false, nil
}

// ExecuteAttackOnEntity resolves a player's attack against an entity
// instance (spec §4.6 steps 1-4; step 5 on death). grid may be nil to
// skip the line-of-sight check.
func (m *Manager) ExecuteAttackOnEntity(ctx context.Context, attacker *model.Player, target model.EntityInstance, attackTick int64, grid geo.Grid) (HitResult, error) {
	tpl, ok := m.templates.EntityTemplate(target.TemplateName)
	if !ok {
		return HitResult{}, resperr.Validation(resperr.CodeTargetNotAttackable, fmt.Sprintf("unknown entity template %q", target.TemplateName))
	}

	attackerProfile := m.PlayerProfile(attacker)
	defenderProfile := m.EntityProfile(tpl)

	damage, miss, err := resolveHit(attacker.Location(), target.Location(), target.IsDead(), tpl.IsAttackable, attackerProfile, defenderProfile, target.CurrentHP, grid)
	if err != nil {
		return HitResult{}, err
	}

	if retaliate, newState := AcquireRetaliationTarget(tpl, target); retaliate {
		if err := m.entityStore.SetEntityState(ctx, target.InstanceID, newState, attacker.ObjectID()); err != nil {
			slog.Error("acquiring retaliation target", "instance", target.InstanceID, "error", err)
		}
	}

	result := HitResult{AttackerID: attacker.ObjectID(), TargetID: target.InstanceID, Damage: damage, Miss: miss}
	if miss {
		m.publish(result)
		return result, nil
	}

	newHP := target.CurrentHP - damage
	if newHP < 0 {
		newHP = 0
	}
	if err := m.entityStore.UpdateEntityHp(ctx, target.InstanceID, newHP); err != nil {
		return HitResult{}, fmt.Errorf("applying damage to %s: %w", target.InstanceID, err)
	}
	result.XPAwards = AwardCombatXP(damage)
	for _, award := range result.XPAwards {
		attacker.AddSkillXP(award.Skill, award.XP)
	}

	if newHP <= 0 {
		result.TargetDied = true
		if err := m.entityStore.SetEntityState(ctx, target.InstanceID, model.StateDying, ""); err != nil {
			return HitResult{}, fmt.Errorf("marking %s dying: %w", target.InstanceID, err)
		}
		attacker.AddSkillXP("hitpoints", tpl.XPReward)
		slog.Info("entity killed", "instance", target.InstanceID, "template", tpl.Name, "killer", attacker.Username())

		respawnTicks := int64(tpl.RespawnTime) * int64(m.hotHz)
		instanceID := target.InstanceID
		time.AfterFunc(m.deathAnimationWindow, func() {
			despawnCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.entityStore.DespawnEntity(despawnCtx, instanceID, attackTick, respawnTicks); err != nil {
				slog.Error("despawning entity after death animation", "instance", instanceID, "error", err)
			}
		})
	}

	m.publish(result)
	return result, nil
}

// ExecuteAttackOnPlayer resolves a player's PvP attack against another
// player.
func (m *Manager) ExecuteAttackOnPlayer(ctx context.Context, attacker, target *model.Player, attackTick int64, grid geo.Grid) (HitResult, error) {
	attackerProfile := m.PlayerProfile(attacker)
	defenderProfile := m.PlayerProfile(target)

	damage, miss, err := resolveHit(attacker.Location(), target.Location(), target.IsDead(), true, attackerProfile, defenderProfile, target.CurrentHP(), grid)
	if err != nil {
		return HitResult{}, err
	}

	result := HitResult{AttackerID: attacker.ObjectID(), TargetID: target.ObjectID(), Damage: damage, Miss: miss}
	if miss {
		m.publish(result)
		return result, nil
	}

	target.ReduceCurrentHP(damage)
	result.XPAwards = AwardCombatXP(damage)
	for _, award := range result.XPAwards {
		attacker.AddSkillXP(award.Skill, award.XP)
	}

	if target.IsDead() && target.DoDie() {
		result.TargetDied = true
		if err := m.handlePlayerDeath(ctx, target, attackTick); err != nil {
			return result, err
		}
		slog.Info("player killed", "victim", target.Username(), "killer", attacker.Username())
	}

	m.publish(result)
	return result, nil
}

// ExecuteEntityAttackOnPlayer resolves an entity instance's attack
// against its target player, driven by the AI package on the entity's
// attack tick.
func (m *Manager) ExecuteEntityAttackOnPlayer(ctx context.Context, attackerInstance model.EntityInstance, attackerTpl model.EntityTemplate, target *model.Player, attackTick int64, grid geo.Grid) (HitResult, error) {
	attackerProfile := m.EntityProfile(attackerTpl)
	defenderProfile := m.PlayerProfile(target)

	damage, miss, err := resolveHit(attackerInstance.Location(), target.Location(), target.IsDead(), true, attackerProfile, defenderProfile, target.CurrentHP(), grid)
	if err != nil {
		return HitResult{}, err
	}

	result := HitResult{AttackerID: attackerInstance.InstanceID, TargetID: target.ObjectID(), Damage: damage, Miss: miss}
	if miss {
		m.publish(result)
		return result, nil
	}

	target.ReduceCurrentHP(damage)

	if target.AutoRetaliate() && !target.HasTarget() {
		target.SetTarget(model.NewWorldObject(attackerInstance.InstanceID, attackerTpl.DisplayName, attackerInstance.Location()))
	}

	if target.IsDead() && target.DoDie() {
		result.TargetDied = true
		if err := m.handlePlayerDeath(ctx, target, attackTick); err != nil {
			return result, err
		}
		slog.Info("player killed by entity", "victim", target.Username(), "killer", attackerInstance.TemplateName)
	}

	m.publish(result)
	return result, nil
}

// handlePlayerDeath applies spec §4.6 step 5's player-death side effects:
// drop a subset of inventory, and clear every entity currently targeting
// the dead player so they return to their spawn.
func (m *Manager) handlePlayerDeath(ctx context.Context, target *model.Player, deathTick int64) error {
	if _, err := DropDeathInventory(ctx, m.dropper, target, deathTick, m.deathProtectionWindow, m.groundItemLifetime); err != nil {
		slog.Error("dropping death inventory", "player", target.Username(), "error", err)
	}
	if err := m.entityStore.ClearPlayerAsTarget(ctx, target.ObjectID()); err != nil {
		return fmt.Errorf("clearing entities targeting %s: %w", target.ObjectID(), err)
	}
	return nil
}

// AcquireRetaliationTarget implements spec §4.6's entity-side auto-
// retaliation: an idle or wandering neutral/aggressive entity attacked by a player
// acquires that player as its target. The caller persists the transition
// via EntityStore.SetEntityState with the attacking player's ID.
func AcquireRetaliationTarget(tpl model.EntityTemplate, instance model.EntityInstance) (shouldRetaliate bool, newState model.EntityState) {
	if instance.State != model.StateIdle && instance.State != model.StateWander {
		return false, instance.State
	}
	if tpl.Behavior != model.BehaviorNeutral && tpl.Behavior != model.BehaviorAggressive {
		return false, instance.State
	}
	return true, model.StateCombat
}

func (m *Manager) publish(result HitResult) {
	if m.hitObserver != nil {
		m.hitObserver(result)
	}
	if m.broadcastFunc != nil {
		m.broadcastFunc(result)
	}
}
