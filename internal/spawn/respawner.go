// Package spawn re-materializes entity instances: seeding a freshly
// loaded map's static spawn points at startup, and re-creating a
// despawned entity once its respawn-queue entry comes due (spec
// §4.1/§4.4 step 2).
package spawn

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/worldmap"
)

// EntityStore is the hot-store subset a Respawner needs, satisfied by
// *hotstore.Store.
type EntityStore interface {
	SpawnEntityInstance(ctx context.Context, templateName, mapID string, x, y, currentHP, maxHP int32, spawnX, spawnY int32, spawnPointID string, wanderRadius, aggroRadius, disengageRadius int32) (model.EntityInstance, error)
	PopReadyRespawns(ctx context.Context, currentTick int64) ([]model.RespawnQueueEntry, error)
}

// TemplateLookup resolves an entity template by name, satisfied by
// *gameserver.Catalog.
type TemplateLookup interface {
	EntityTemplate(name string) (model.EntityTemplate, bool)
}

// Respawner owns entity re-materialization: the initial population of
// every map's static spawn points, and the recurring pop-and-recreate
// of entities whose respawn timer has elapsed. Grounded on the
// teacher's RespawnTaskManager (a ticker-driven loop that pulls due
// tasks and hands each to the spawn manager to re-create), adapted
// from the teacher's own internal ticker to being driven once per tick
// by the tick scheduler, since this module's single hot-tick loop
// already provides the cadence.
type Respawner struct {
	store     EntityStore
	templates TemplateLookup
	maps      *worldmap.Registry
}

// NewRespawner creates a Respawner.
func NewRespawner(store EntityStore, templates TemplateLookup, maps *worldmap.Registry) *Respawner {
	return &Respawner{store: store, templates: templates, maps: maps}
}

// SeedMap creates one entity instance per static spawn point declared
// on mapID's tile map. Called once per map at server startup.
func (r *Respawner) SeedMap(ctx context.Context, mapID string) error {
	tm, ok := r.maps.Get(mapID)
	if !ok {
		return fmt.Errorf("seeding map %q: map not loaded", mapID)
	}

	for _, sp := range tm.SpawnPoints() {
		if err := r.materialize(ctx, sp.TemplateName, mapID, sp.X, sp.Y, sp.ID, sp.WanderRadius, sp.AggroOverride, sp.DisengageOverride); err != nil {
			slog.Error("seeding spawn point failed", "map", mapID, "spawn_point", sp.ID, "template", sp.TemplateName, "error", err)
			continue
		}
	}
	return nil
}

// ProcessReady pops every respawn-queue entry due at or before nowTick
// and re-materializes it at its original spawn point (spec §4.4 step
// 2: "pop ready respawns"). Safe to call from a single scheduler
// goroutine each hot tick; each map's entities are re-created on their
// own map regardless of which map's worker happens to call this, since
// the respawn queue is server-wide.
func (r *Respawner) ProcessReady(ctx context.Context, nowTick int64) error {
	ready, err := r.store.PopReadyRespawns(ctx, nowTick)
	if err != nil {
		return fmt.Errorf("popping ready respawns: %w", err)
	}

	for _, entry := range ready {
		tm, ok := r.maps.Get(entry.MapID)
		if !ok {
			slog.Warn("respawn skipped: map not loaded", "map", entry.MapID, "instance", entry.InstanceID)
			continue
		}
		sp, ok := findSpawnPoint(tm.SpawnPoints(), entry.SpawnPointID)
		if !ok {
			slog.Warn("respawn skipped: spawn point no longer exists", "map", entry.MapID, "spawn_point", entry.SpawnPointID)
			continue
		}
		if err := r.materialize(ctx, entry.TemplateName, entry.MapID, sp.X, sp.Y, sp.ID, sp.WanderRadius, sp.AggroOverride, sp.DisengageOverride); err != nil {
			slog.Error("respawn failed", "map", entry.MapID, "instance", entry.InstanceID, "error", err)
		}
	}
	return nil
}

func (r *Respawner) materialize(ctx context.Context, templateName, mapID string, x, y int32, spawnPointID string, wanderRadius, aggroOverride, disengageOverride int32) error {
	tpl, ok := r.templates.EntityTemplate(templateName)
	if !ok {
		return fmt.Errorf("unknown entity template %q", templateName)
	}

	maxHP := tpl.MaxHP()
	_, err := r.store.SpawnEntityInstance(ctx, templateName, mapID, x, y, maxHP, maxHP, x, y, spawnPointID, wanderRadius, aggroOverride, disengageOverride)
	return err
}

func findSpawnPoint(points []worldmap.SpawnPoint, id string) (worldmap.SpawnPoint, bool) {
	for _, sp := range points {
		if sp.ID == id {
			return sp, true
		}
	}
	return worldmap.SpawnPoint{}, false
}
