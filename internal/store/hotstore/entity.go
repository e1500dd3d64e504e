package hotstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/udisondev/tileworld/internal/model"
)

// SpawnEntityInstance creates a new live entity instance on a map from
// a spawn point, grounded on the original entity manager's
// spawn_entity_instance: a counter-style unique ID, a TTL-bounded hash
// record, and membership in that map's entity set.
func (s *Store) SpawnEntityInstance(ctx context.Context, templateName, mapID string, x, y, currentHP, maxHP int32, spawnX, spawnY int32, spawnPointID string, wanderRadius, aggroRadius, disengageRadius int32) (model.EntityInstance, error) {
	instanceID, err := s.nextEntityInstanceID(ctx)
	if err != nil {
		return model.EntityInstance{}, err
	}

	inst := model.EntityInstance{
		InstanceID:      instanceID,
		TemplateName:    templateName,
		MapID:           mapID,
		X:               x,
		Y:               y,
		SpawnX:          spawnX,
		SpawnY:          spawnY,
		CurrentHP:       currentHP,
		MaxHP:           maxHP,
		State:           model.StateIdle,
		WanderRadius:    wanderRadius,
		AggroRadius:     aggroRadius,
		DisengageRadius: disengageRadius,
		SpawnPointID:    spawnPointID,
	}

	if err := s.writeEntity(ctx, inst); err != nil {
		return model.EntityInstance{}, err
	}

	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, mapEntitiesKey(mapID), instanceID)
	pipe.Expire(ctx, mapEntitiesKey(mapID), s.entityTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return model.EntityInstance{}, fmt.Errorf("indexing entity %q on map %q: %w", instanceID, mapID, err)
	}

	return inst, nil
}

func (s *Store) nextEntityInstanceID(ctx context.Context) (string, error) {
	n, err := s.rdb.Incr(ctx, keyEntityCounter).Result()
	if err != nil {
		return "", fmt.Errorf("incrementing entity instance counter: %w", err)
	}
	return fmt.Sprintf("entity-%d-%s", n, uuid.NewString()), nil
}

func (s *Store) writeEntity(ctx context.Context, inst model.EntityInstance) error {
	raw, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("marshaling entity %q: %w", inst.InstanceID, err)
	}
	if err := s.rdb.Set(ctx, entityKey(inst.InstanceID), raw, s.entityTTL).Err(); err != nil {
		return fmt.Errorf("writing entity %q: %w", inst.InstanceID, err)
	}
	return nil
}

// GetEntityInstance returns a live entity by instance ID. ok is false
// if the instance does not exist (despawned, expired, or never spawned).
func (s *Store) GetEntityInstance(ctx context.Context, instanceID string) (model.EntityInstance, bool, error) {
	raw, err := s.rdb.Get(ctx, entityKey(instanceID)).Bytes()
	if err == redis.Nil {
		return model.EntityInstance{}, false, nil
	}
	if err != nil {
		return model.EntityInstance{}, false, fmt.Errorf("reading entity %q: %w", instanceID, err)
	}
	var inst model.EntityInstance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return model.EntityInstance{}, false, fmt.Errorf("unmarshaling entity %q: %w", instanceID, err)
	}
	return inst, true, nil
}

// GetMapEntities returns every live entity instance on mapID.
func (s *Store) GetMapEntities(ctx context.Context, mapID string) ([]model.EntityInstance, error) {
	ids, err := s.rdb.SMembers(ctx, mapEntitiesKey(mapID)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing entities on map %q: %w", mapID, err)
	}

	out := make([]model.EntityInstance, 0, len(ids))
	for _, id := range ids {
		inst, ok, err := s.GetEntityInstance(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, inst)
		}
	}
	return out, nil
}

// UpdateEntityPosition writes a new (x, y) for instanceID, refreshing
// its TTL. A no-op if the instance no longer exists.
func (s *Store) UpdateEntityPosition(ctx context.Context, instanceID string, x, y int32) error {
	inst, ok, err := s.GetEntityInstance(ctx, instanceID)
	if err != nil || !ok {
		return err
	}
	inst.X, inst.Y = x, y
	return s.writeEntity(ctx, inst)
}

// UpdateEntityHp writes a new current HP for instanceID.
func (s *Store) UpdateEntityHp(ctx context.Context, instanceID string, currentHP int32) error {
	inst, ok, err := s.GetEntityInstance(ctx, instanceID)
	if err != nil || !ok {
		return err
	}
	inst.CurrentHP = currentHP
	return s.writeEntity(ctx, inst)
}

// SetEntityState writes a new AI state and (optionally) target player
// for instanceID. Pass an empty targetPlayerID to leave the current
// target unchanged; callers that want to clear a target must do so
// through ClearPlayerAsTarget instead.
func (s *Store) SetEntityState(ctx context.Context, instanceID string, state model.EntityState, targetPlayerID string) error {
	inst, ok, err := s.GetEntityInstance(ctx, instanceID)
	if err != nil || !ok {
		return err
	}
	inst.State = state
	if targetPlayerID != "" {
		inst.TargetPlayerID = targetPlayerID
	}
	return s.writeEntity(ctx, inst)
}

// GetEntitiesTargetingPlayer scans every map's entity set for
// instances whose TargetPlayerID matches playerID, grounded on the
// original entity manager's get_entities_targeting_player.
func (s *Store) GetEntitiesTargetingPlayer(ctx context.Context, playerID string) ([]model.EntityInstance, error) {
	mapKeys, err := s.rdb.Keys(ctx, keyMapEntitiesPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("listing map entity indices: %w", err)
	}

	var out []model.EntityInstance
	for _, mapKey := range mapKeys {
		ids, err := s.rdb.SMembers(ctx, mapKey).Result()
		if err != nil {
			return nil, fmt.Errorf("listing entities for %q: %w", mapKey, err)
		}
		for _, id := range ids {
			inst, ok, err := s.GetEntityInstance(ctx, id)
			if err != nil {
				return nil, err
			}
			if ok && inst.TargetPlayerID == playerID {
				out = append(out, inst)
			}
		}
	}
	return out, nil
}

// ClearPlayerAsTarget puts every entity targeting playerID into the
// returning state with no target, used on logout (spec §4.1 UnregisterOnline) and
// on death (spec §4.6: "clear all entities targeting the player").
func (s *Store) ClearPlayerAsTarget(ctx context.Context, playerID string) error {
	targeting, err := s.GetEntitiesTargetingPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	for _, inst := range targeting {
		inst.State = model.StateReturning
		inst.TargetPlayerID = ""
		if err := s.writeEntity(ctx, inst); err != nil {
			return err
		}
	}
	return nil
}

// DespawnEntity removes instanceID from the active set and enqueues it
// in the sorted respawn queue, scored by the tick at which it becomes
// eligible to respawn (spec §4.1).
func (s *Store) DespawnEntity(ctx context.Context, instanceID string, deathTick int64, respawnDelayTicks int64) error {
	inst, ok, err := s.GetEntityInstance(ctx, instanceID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	readyAt := deathTick + respawnDelayTicks
	entry := model.RespawnQueueEntry{
		InstanceID:   instanceID,
		TemplateName: inst.TemplateName,
		MapID:        inst.MapID,
		SpawnPointID: inst.SpawnPointID,
		ReadyAtTick:  readyAt,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling respawn entry for %q: %w", instanceID, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, entityKey(instanceID))
	pipe.SRem(ctx, mapEntitiesKey(inst.MapID), instanceID)
	pipe.ZAdd(ctx, keyRespawnQueue, redis.Z{Score: float64(readyAt), Member: instanceID})
	pipe.Set(ctx, respawnDataKey(instanceID), raw, s.entityTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("despawning entity %q: %w", instanceID, err)
	}
	return nil
}

// PopReadyRespawns returns and removes every respawn-queue entry whose
// ReadyAtTick is at or before currentTick, ready for the spawn-point
// loader to re-materialize (spec §4.1/§4.4).
func (s *Store) PopReadyRespawns(ctx context.Context, currentTick int64) ([]model.RespawnQueueEntry, error) {
	members, err := s.rdb.ZRangeByScore(ctx, keyRespawnQueue, &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", currentTick),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("querying respawn queue: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	out := make([]model.RespawnQueueEntry, 0, len(members))
	pipe := s.rdb.TxPipeline()
	for _, instanceID := range members {
		pipe.ZRem(ctx, keyRespawnQueue, instanceID)
		pipe.Del(ctx, respawnDataKey(instanceID))
	}

	for _, instanceID := range members {
		raw, err := s.rdb.Get(ctx, respawnDataKey(instanceID)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading respawn data for %q: %w", instanceID, err)
		}
		var entry model.RespawnQueueEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("unmarshaling respawn data for %q: %w", instanceID, err)
		}
		out = append(out, entry)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("clearing popped respawn entries: %w", err)
	}
	return out, nil
}
