// Package hotstore is the single source of truth for runtime state:
// online players' positions/HP/facing, live entity instances, ground
// items, and the respawn queue. Player, entity and ground-item keys
// carry a TTL refreshed on every write (the online-player set, the
// respawn queue and the counters have none), and nothing here is ever
// the durable record of anything
// (that is internal/store/postgres's job) — a Redis restart loses
// nothing the relational store doesn't already hold at the last
// checkpoint.
package hotstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store wraps a go-redis client with the key schema and TTL policy
// every runtime-state accessor in this package shares.
type Store struct {
	rdb       *redis.Client
	entityTTL time.Duration
}

// New connects to Redis and verifies the connection with a PING.
func New(ctx context.Context, addr, password string, db int, entityTTL time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging hot store: %w", err)
	}
	return &Store{rdb: rdb, entityTTL: entityTTL}, nil
}

// Close closes the underlying Redis connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Key templates, grounded on the same flat-namespace convention as the
// original Valkey-backed entity manager this store supersedes.
const (
	keyOnlinePlayers      = "online_players"
	keyPlayerPosPrefix    = "player_position:"
	keyPlayerStatePrefix  = "player_state:"
	keyEntityPrefix       = "entity_instance:"
	keyMapEntitiesPrefix  = "map_entities:"
	keyEntityCounter      = "entity_instance_counter"
	keyRespawnQueue       = "entity_respawn_queue"
	keyRespawnDataPrefix  = "entity_respawn:"
	keyMapGroundPrefix    = "ground_items:"
	keyGroundItemPrefix   = "ground_item:"
	keyGroundItemCounter  = "ground_item_counter"
)

func playerPosKey(playerID string) string   { return keyPlayerPosPrefix + playerID }
func playerStateKey(playerID string) string { return keyPlayerStatePrefix + playerID }
func entityKey(instanceID string) string    { return keyEntityPrefix + instanceID }
func mapEntitiesKey(mapID string) string    { return keyMapEntitiesPrefix + mapID }
func respawnDataKey(instanceID string) string { return keyRespawnDataPrefix + instanceID }
func mapGroundKey(mapID string) string      { return keyMapGroundPrefix + mapID }
func groundItemKey(groundItemID string) string { return keyGroundItemPrefix + groundItemID }
