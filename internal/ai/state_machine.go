// Package ai drives the per-map entity state machine: wandering, aggro
// acquisition, chase, combat, disengage, and return-to-spawn, gated by
// A* pathfinding and Bresenham line-of-sight (spec §4.7/§4.8).
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/tileworld/internal/config"
	"github.com/udisondev/tileworld/internal/game/combat"
	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
)

// EntityStore is the hot-store subset the state machine needs, satisfied
// by *hotstore.Store.
type EntityStore interface {
	GetMapEntities(ctx context.Context, mapID string) ([]model.EntityInstance, error)
	UpdateEntityPosition(ctx context.Context, instanceID string, x, y int32) error
	SetEntityState(ctx context.Context, instanceID string, state model.EntityState, targetPlayerID string) error
	UpdateEntityHp(ctx context.Context, instanceID string, currentHP int32) error
}

// Deps bundles the collaborators ProcessEntities needs: the hot store,
// the entity-template catalogue, the live player registry, the map's
// collision grid, and the combat manager that resolves entity-initiated
// attacks. All are narrow interfaces injected by the caller (the tick
// scheduler) so this package imports neither gameserver nor worldmap
// directly — the teacher avoids the same cycle with its AttackFunc/
// ScanFunc/GetObjectFunc callbacks on AttackableAI.
type Deps struct {
	Store     EntityStore
	Templates combat.EntityTemplateLookup
	Players   PlayerLookup
	Grid      geo.Grid
	Combat    *combat.Manager
	Timers    *TimerStore
}

// ProcessEntities runs one AI tick for every entity on mapID that is
// neither dying nor dead
// (spec §4.4 step 3: "Run AIService.ProcessEntities(map_id, now_tick)").
// Errors from individual entities are logged and do not abort the tick —
// one misbehaving entity must not stall the rest of the map.
func ProcessEntities(ctx context.Context, mapID string, nowTick int64, cfg config.AIConfig, deps Deps) error {
	if !cfg.Enabled {
		return nil
	}

	instances, err := deps.Store.GetMapEntities(ctx, mapID)
	if err != nil {
		return fmt.Errorf("loading entities for map %q: %w", mapID, err)
	}

	now := time.Now()
	for _, inst := range instances {
		if inst.State == model.StateDying || inst.State == model.StateDead {
			continue
		}
		tpl, ok := deps.Templates.EntityTemplate(inst.TemplateName)
		if !ok {
			slog.Warn("AI tick: unknown entity template", "instance", inst.InstanceID, "template", inst.TemplateName)
			continue
		}
		if err := processOne(ctx, inst, tpl, now, nowTick, cfg, deps); err != nil {
			slog.Error("AI tick failed for entity", "instance", inst.InstanceID, "error", err)
		}
	}
	return nil
}

func processOne(ctx context.Context, inst model.EntityInstance, tpl model.EntityTemplate, now time.Time, nowTick int64, cfg config.AIConfig, deps Deps) error {
	timer := deps.Timers.get(inst.InstanceID)

	switch inst.State {
	case model.StateIdle:
		return stepIdle(ctx, inst, tpl, timer, now, cfg, deps)
	case model.StateWander:
		return stepWander(ctx, inst, tpl, timer, now, cfg, deps)
	case model.StateCombat:
		return stepCombat(ctx, inst, tpl, timer, now, nowTick, cfg, deps)
	case model.StateReturning:
		return stepReturning(ctx, inst, timer, cfg, deps)
	}
	return nil
}

func stepIdle(ctx context.Context, inst model.EntityInstance, tpl model.EntityTemplate, timer *entityTimers, now time.Time, cfg config.AIConfig, deps Deps) error {
	if tpl.IsAggressive() {
		if target, found := acquireTarget(inst, tpl, deps); found {
			timer.losLostAt = time.Time{}
			return deps.Store.SetEntityState(ctx, inst.InstanceID, model.StateCombat, target.ObjectID())
		}
	}

	if !now.Before(timer.idleUntil) && inst.WanderRadius > 0 {
		timer.wanderTarget = pickWanderTarget(inst.SpawnX, inst.SpawnY, inst.WanderRadius, inst.MapID)
		timer.hasWanderTarget = true
		return deps.Store.SetEntityState(ctx, inst.InstanceID, model.StateWander, "")
	}
	return nil
}

func stepWander(ctx context.Context, inst model.EntityInstance, tpl model.EntityTemplate, timer *entityTimers, now time.Time, cfg config.AIConfig, deps Deps) error {
	if now.Sub(timer.lastMoveAt) < cfg.WanderInterval {
		return nil
	}

	loc := inst.Location()
	if !timer.hasWanderTarget || (loc.X == timer.wanderTarget.X && loc.Y == timer.wanderTarget.Y) {
		timer.idleUntil = resetIdleTimer(now, cfg.IdleMin, cfg.IdleMax)
		timer.hasWanderTarget = false
		return deps.Store.SetEntityState(ctx, inst.InstanceID, model.StateIdle, "")
	}

	next, ok := geo.NextStep(deps.Grid, geo.Tile{X: loc.X, Y: loc.Y}, geo.Tile{X: timer.wanderTarget.X, Y: timer.wanderTarget.Y}, nil, cfg.MaxPathfindingDistance)
	if ok {
		timer.lastMoveAt = now
		if err := deps.Store.UpdateEntityPosition(ctx, inst.InstanceID, next.X, next.Y); err != nil {
			return fmt.Errorf("stepping wander for %s: %w", inst.InstanceID, err)
		}
	}

	if tpl.IsAggressive() {
		if target, found := acquireTarget(inst, tpl, deps); found {
			return deps.Store.SetEntityState(ctx, inst.InstanceID, model.StateCombat, target.ObjectID())
		}
	}
	return nil
}

func stepCombat(ctx context.Context, inst model.EntityInstance, tpl model.EntityTemplate, timer *entityTimers, now time.Time, nowTick int64, cfg config.AIConfig, deps Deps) error {
	if !inst.HasTarget() {
		return deps.Store.SetEntityState(ctx, inst.InstanceID, model.StateReturning, "")
	}

	target, ok := deps.Players.PlayerByID(inst.TargetPlayerID)
	if !ok || target.Location().MapID != inst.MapID || target.IsDead() {
		return deps.Store.SetEntityState(ctx, inst.InstanceID, model.StateReturning, "")
	}

	spawn := model.NewLocation(inst.SpawnX, inst.SpawnY, inst.MapID, model.FacingNorth)
	if !spawn.WithinChebyshev(target.Location(), inst.DisengageRadius) {
		return deps.Store.SetEntityState(ctx, inst.InstanceID, model.StateReturning, "")
	}

	npcLoc := inst.Location()
	hasLOS := geo.HasLineOfSight(deps.Grid, geo.Tile{X: npcLoc.X, Y: npcLoc.Y}, geo.Tile{X: target.Location().X, Y: target.Location().Y})
	if !hasLOS {
		if timer.losLostAt.IsZero() {
			timer.losLostAt = now
		}
		if now.Sub(timer.losLostAt) > cfg.LOSTimeout {
			return deps.Store.SetEntityState(ctx, inst.InstanceID, model.StateReturning, "")
		}
		return nil
	}
	timer.losLostAt = time.Time{}

	if npcLoc.WithinChebyshev(target.Location(), MeleeRangeForTemplate) {
		if now.Sub(timer.lastAttackAt) < cfg.AttackInterval {
			return nil
		}
		timer.lastAttackAt = now
		result, err := deps.Combat.ExecuteEntityAttackOnPlayer(ctx, inst, tpl, target, nowTick, deps.Grid)
		if err != nil {
			return fmt.Errorf("entity attack %s → %s: %w", inst.InstanceID, target.ObjectID(), err)
		}
		if result.TargetDied {
			return deps.Store.SetEntityState(ctx, inst.InstanceID, model.StateReturning, "")
		}
		return nil
	}

	if now.Sub(timer.lastMoveAt) < cfg.ChaseInterval {
		return nil
	}
	next, ok := geo.NextStep(deps.Grid, geo.Tile{X: npcLoc.X, Y: npcLoc.Y}, geo.Tile{X: target.Location().X, Y: target.Location().Y}, nil, cfg.MaxPathfindingDistance)
	if ok {
		timer.lastMoveAt = now
		if err := deps.Store.UpdateEntityPosition(ctx, inst.InstanceID, next.X, next.Y); err != nil {
			return fmt.Errorf("chasing target for %s: %w", inst.InstanceID, err)
		}
	}
	return nil
}

func stepReturning(ctx context.Context, inst model.EntityInstance, timer *entityTimers, cfg config.AIConfig, deps Deps) error {
	loc := inst.Location()
	if loc.X == inst.SpawnX && loc.Y == inst.SpawnY {
		if err := deps.Store.UpdateEntityHp(ctx, inst.InstanceID, inst.MaxHP); err != nil {
			return fmt.Errorf("restoring hp for %s: %w", inst.InstanceID, err)
		}
		timer.idleUntil = resetIdleTimer(time.Now(), cfg.IdleMin, cfg.IdleMax)
		return deps.Store.SetEntityState(ctx, inst.InstanceID, model.StateIdle, "")
	}

	next, ok := geo.NextStep(deps.Grid, geo.Tile{X: loc.X, Y: loc.Y}, geo.Tile{X: inst.SpawnX, Y: inst.SpawnY}, nil, cfg.MaxPathfindingDistance)
	if !ok {
		// Grid is completely blocked between here and spawn: teleport
		// (spec §4.7's explicit returning-state fallback).
		return deps.Store.UpdateEntityPosition(ctx, inst.InstanceID, inst.SpawnX, inst.SpawnY)
	}
	return deps.Store.UpdateEntityPosition(ctx, inst.InstanceID, next.X, next.Y)
}

// MeleeRangeForTemplate is the Chebyshev tile range at which an entity
// considers itself adjacent enough to attack rather than chase. Entities
// have no ranged-weapon concept (spec §3's entity template carries only
// innate skills, no equipped weapon), so this is always melee range.
const MeleeRangeForTemplate int32 = combat.MeleeRange

func acquireTarget(inst model.EntityInstance, tpl model.EntityTemplate, deps Deps) (*model.Player, bool) {
	players := deps.Players.PlayersOnMap(inst.MapID)
	return AcquireAggroTarget(inst.Location(), inst.AggroRadius, deps.Grid, players)
}
