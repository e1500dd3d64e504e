package gameserver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/tileworld/internal/ai"
	"github.com/udisondev/tileworld/internal/config"
	"github.com/udisondev/tileworld/internal/game/combat"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/store/hotstore"
	"github.com/udisondev/tileworld/internal/worldmap"
)

// respawnSource is the subset of internal/spawn.Respawner the scheduler
// drives once per hot tick.
type respawnSource interface {
	ProcessReady(ctx context.Context, nowTick int64) error
}

// tickBudget is the soft per-tick time budget (spec §4.4: "a tick has a
// soft budget (≈50 ms)"). Exceeding it only logs a warning — the
// scheduler never drops or coalesces ticks.
const tickBudget = 50 * time.Millisecond

// TickScheduler advances world state at the configured hot cadence,
// one goroutine per map per tick (spec §5: "one worker per tick per
// map"), fed by a single shared *TickClock. Maps run concurrently
// within a tick, but the next tick starts only after every map has
// finished, so a slow map delays the next tick of all maps. Grounded on
// the teacher's ai.TickManager (a single time.Ticker driving a fixed-
// rate sweep over every registered controller, with per-controller
// panics/errors never stopping the sweep); generalized here from one
// flat sweep over all NPCs to one goroutine per map, and from
// per-controller Tick() calls to the three ordered phases spec §4.4
// names: respawn, AI, broadcast diff.
type TickScheduler struct {
	maps      *worldmap.Registry
	hot       *hotstore.Store
	templates combat.EntityTemplateLookup
	players   ai.PlayerLookup
	combat    *combat.Manager
	broadcast *Broadcaster
	respawner respawnSource
	clock     *TickClock
	aiCfg     config.AIConfig
	hotHz     int

	mu        sync.Mutex
	timers    map[string]*ai.TimerStore
	lastSeen  map[string]map[string]model.EntityInstance // mapID -> instanceID -> last broadcast snapshot
}

// NewTickScheduler wires a TickScheduler from its collaborators.
func NewTickScheduler(
	maps *worldmap.Registry,
	hot *hotstore.Store,
	templates combat.EntityTemplateLookup,
	players ai.PlayerLookup,
	combatMgr *combat.Manager,
	broadcaster *Broadcaster,
	respawner respawnSource,
	clock *TickClock,
	aiCfg config.AIConfig,
	tickCfg config.TickConfig,
) *TickScheduler {
	hotHz := tickCfg.HotHz
	if hotHz <= 0 {
		hotHz = 20
	}
	return &TickScheduler{
		maps:      maps,
		hot:       hot,
		templates: templates,
		players:   players,
		combat:    combatMgr,
		broadcast: broadcaster,
		respawner: respawner,
		clock:     clock,
		aiCfg:     aiCfg,
		hotHz:     hotHz,
		timers:    make(map[string]*ai.TimerStore),
		lastSeen:  make(map[string]map[string]model.EntityInstance),
	}
}

// Run drives the hot-tick loop until ctx is canceled. One tick fires
// every 1/hotHz seconds; each tick's work for every map runs
// concurrently and Run waits for all of them before advancing again, so
// a map that ran long never overlaps its own next tick.
func (s *TickScheduler) Run(ctx context.Context) {
	interval := time.Second / time.Duration(s.hotHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("tick scheduler started", "hot_hz", s.hotHz, "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("tick scheduler stopping")
			return
		case <-ticker.C:
			s.runOneTick(ctx)
		}
	}
}

// runOneTick advances the clock once and runs the per-tick pipeline
// (spec §4.4): pop ready respawns (server-wide, so done once here
// rather than per map), then process every map's AI and broadcast diff
// concurrently.
func (s *TickScheduler) runOneTick(ctx context.Context) {
	start := time.Now()
	nowTick := s.clock.Advance()

	if err := s.respawner.ProcessReady(ctx, nowTick); err != nil {
		slog.Error("tick: respawn processing failed", "tick", nowTick, "error", err)
	}

	mapIDs := s.maps.MapIDs()
	var wg sync.WaitGroup
	wg.Add(len(mapIDs))
	for _, mapID := range mapIDs {
		go func(mapID string) {
			defer wg.Done()
			s.processMap(ctx, mapID, nowTick)
		}(mapID)
	}
	wg.Wait()

	if elapsed := time.Since(start); elapsed > tickBudget {
		slog.Warn("slow tick", "tick", nowTick, "elapsed", elapsed, "budget", tickBudget, "maps", len(mapIDs))
	}
}

// processMap runs one map's AI step and computes its broadcast diff. A
// failure in either phase is logged and isolated — it never prevents
// other maps from ticking, and never stops the scheduler (spec §7:
// "the tick loop never propagates per-entity failures").
func (s *TickScheduler) processMap(ctx context.Context, mapID string, nowTick int64) {
	grid, ok := s.maps.Get(mapID)
	if !ok {
		return
	}

	timers := s.timerStoreFor(mapID)
	deps := ai.Deps{
		Store:     s.hot,
		Templates: s.templates,
		Players:   s.players,
		Grid:      grid,
		Combat:    s.combat,
		Timers:    timers,
	}
	if err := ai.ProcessEntities(ctx, mapID, nowTick, s.aiCfg, deps); err != nil {
		slog.Error("tick: AI processing failed", "map", mapID, "tick", nowTick, "error", err)
	}

	s.broadcastEntityDiff(ctx, mapID, timers)
}

// timerStoreFor returns mapID's per-entity AI timer store, creating one
// on first use. Each map's store is touched only by that map's own
// goroutine within a tick, but creation is guarded since the first few
// ticks across different maps can race on the lazily-populated index.
func (s *TickScheduler) timerStoreFor(mapID string) *ai.TimerStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.timers[mapID]
	if !ok {
		ts = ai.NewTimerStore()
		s.timers[mapID] = ts
	}
	return ts
}

// broadcastEntityDiff fetches mapID's current entity set and compares
// it against the snapshot taken at the end of the previous tick,
// emitting EVENT_ENTITY_SPAWNED/UPDATE/DESPAWN for whatever changed
// (spec §4.4 step 5, restricted to entities — player movement and
// combat already broadcast synchronously from their own handlers).
func (s *TickScheduler) broadcastEntityDiff(ctx context.Context, mapID string, timers *ai.TimerStore) {
	current, err := s.hot.GetMapEntities(ctx, mapID)
	if err != nil {
		slog.Error("tick: loading entities for broadcast diff failed", "map", mapID, "error", err)
		return
	}

	s.mu.Lock()
	prev := s.lastSeen[mapID]
	s.mu.Unlock()

	currentByID, spawned, updated, despawned := diffEntities(prev, current)

	for _, inst := range spawned {
		s.broadcast.EntitySpawned(inst)
	}
	for _, inst := range updated {
		s.broadcast.EntityUpdated(inst)
	}
	for _, inst := range despawned {
		s.broadcast.EntityDespawned(inst)
		timers.Clear(inst.InstanceID)
	}

	s.mu.Lock()
	s.lastSeen[mapID] = currentByID
	s.mu.Unlock()
}

// diffEntities compares a map's previous tick's entity snapshot against
// its current entity list, classifying each current entity as freshly
// spawned or updated (moved/state/HP changed) and each no-longer-present
// previous entity as despawned. Split out from broadcastEntityDiff so
// the classification logic is testable without a live hot store.
func diffEntities(prev map[string]model.EntityInstance, current []model.EntityInstance) (currentByID map[string]model.EntityInstance, spawned, updated, despawned []model.EntityInstance) {
	currentByID = make(map[string]model.EntityInstance, len(current))
	for _, inst := range current {
		currentByID[inst.InstanceID] = inst

		old, existed := prev[inst.InstanceID]
		switch {
		case !existed:
			spawned = append(spawned, inst)
		case old.X != inst.X || old.Y != inst.Y || old.State != inst.State || old.CurrentHP != inst.CurrentHP:
			updated = append(updated, inst)
		}
	}
	for id, old := range prev {
		if _, stillPresent := currentByID[id]; !stillPresent {
			despawned = append(despawned, old)
		}
	}
	return currentByID, spawned, updated, despawned
}
