package ai

import (
	"math/rand/v2"
	"time"

	"github.com/udisondev/tileworld/internal/model"
)

// entityTimers is the per-entity state kept outside the hot store (spec
// §4.7: "{idle_timer, wander_target, last_move_tick, last_attack_tick,
// last_aggro_check_tick}"). Touched only by the map worker that owns this
// entity's map, so it needs no locking of its own — single-writer.
type entityTimers struct {
	idleUntil         time.Time
	wanderTarget      model.Location
	hasWanderTarget   bool
	lastMoveAt        time.Time
	lastAttackAt      time.Time
	lastAggroCheckAt  time.Time
	losLostAt         time.Time
}

// TimerStore holds one entityTimers record per live entity instance,
// keyed by instance ID. It belongs to a single map worker; nothing here
// is safe for concurrent use from more than one goroutine.
type TimerStore struct {
	byInstance map[string]*entityTimers
}

// NewTimerStore creates an empty timer store for one map worker.
func NewTimerStore() *TimerStore {
	return &TimerStore{byInstance: make(map[string]*entityTimers)}
}

// get returns the timer record for instanceID, creating an idle-expired
// one on first use so a freshly spawned entity starts in state idle with
// idle_timer already at zero (spec's idle branch decrements then checks).
func (s *TimerStore) get(instanceID string) *entityTimers {
	t, ok := s.byInstance[instanceID]
	if !ok {
		t = &entityTimers{}
		s.byInstance[instanceID] = t
	}
	return t
}

// Clear drops instanceID's timer record, called on despawn (spec §4.7:
// "Cleared on despawn").
func (s *TimerStore) Clear(instanceID string) {
	delete(s.byInstance, instanceID)
}

// resetIdleTimer picks a new idle duration uniformly within [min, max)
// (spec's "reset idle_timer ∈ [idle_min, idle_max]").
func resetIdleTimer(now time.Time, min, max time.Duration) time.Time {
	if max <= min {
		return now.Add(min)
	}
	span := max - min
	return now.Add(min + time.Duration(rand.Int64N(int64(span))))
}

// pickWanderTarget chooses a tile uniformly within [spawn±wanderRadius]
// (spec's "pick wander_target uniformly within [spawn±wander_radius]").
func pickWanderTarget(spawnX, spawnY, wanderRadius int32, mapID string) model.Location {
	dx := int32(rand.Int64N(int64(2*wanderRadius+1))) - wanderRadius
	dy := int32(rand.Int64N(int64(2*wanderRadius+1))) - wanderRadius
	return model.NewLocation(spawnX+dx, spawnY+dy, mapID, model.FacingNorth)
}
