package hotstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// groundItemRecord is the hot-store record for a dropped item (spec §3):
// `(ground_item_id, item_id, x, y, quantity, map_id, dropper_player_id?,
// drop_tick, protection_expires_at)`.
type groundItemRecord struct {
	GroundItemID        string    `json:"ground_item_id"`
	ItemID              string    `json:"item_id"`
	TemplateName        string    `json:"template_name"`
	X                   int32     `json:"x"`
	Y                   int32     `json:"y"`
	Quantity            int32     `json:"quantity"`
	MapID               string    `json:"map_id"`
	DropperPlayerID     string    `json:"dropper_player_id,omitempty"`
	DropTick            int64     `json:"drop_tick"`
	ProtectionExpiresAt time.Time `json:"protection_expires_at"`
}

// DropGroundItem places a new ground item at (x, y) on mapID with a
// despawn TTL. dropperPlayerID may be empty for entity/unowned drops.
func (s *Store) DropGroundItem(ctx context.Context, itemID, templateName string, x, y, quantity int32, mapID, dropperPlayerID string, dropTick int64, protectionWindow, despawnAfter time.Duration) (string, error) {
	groundItemID := "ground-" + uuid.NewString()
	rec := groundItemRecord{
		GroundItemID:        groundItemID,
		ItemID:              itemID,
		TemplateName:        templateName,
		X:                   x,
		Y:                   y,
		Quantity:            quantity,
		MapID:               mapID,
		DropperPlayerID:     dropperPlayerID,
		DropTick:            dropTick,
		ProtectionExpiresAt: time.Now().Add(protectionWindow),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshaling ground item: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, groundItemKey(groundItemID), raw, despawnAfter)
	pipe.SAdd(ctx, mapGroundKey(mapID), groundItemID)
	pipe.Expire(ctx, mapGroundKey(mapID), despawnAfter)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("indexing ground item %q: %w", groundItemID, err)
	}
	return groundItemID, nil
}

// GetGroundItem returns a ground item by ID. ok is false if it has
// despawned or was already picked up.
func (s *Store) GetGroundItem(ctx context.Context, groundItemID string) (groundItemRecord, bool, error) {
	raw, err := s.rdb.Get(ctx, groundItemKey(groundItemID)).Bytes()
	if err == redis.Nil {
		return groundItemRecord{}, false, nil
	}
	if err != nil {
		return groundItemRecord{}, false, fmt.Errorf("reading ground item %q: %w", groundItemID, err)
	}
	var rec groundItemRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return groundItemRecord{}, false, fmt.Errorf("unmarshaling ground item %q: %w", groundItemID, err)
	}
	return rec, true, nil
}

// GetMapGroundItems returns every ground item currently on mapID.
func (s *Store) GetMapGroundItems(ctx context.Context, mapID string) ([]groundItemRecord, error) {
	ids, err := s.rdb.SMembers(ctx, mapGroundKey(mapID)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing ground items on map %q: %w", mapID, err)
	}
	out := make([]groundItemRecord, 0, len(ids))
	for _, id := range ids {
		rec, ok, err := s.GetGroundItem(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// PickUpGroundItem removes a ground item from the map index and its
// own key, returning the record that was picked up so the caller can
// place it into the pickingUpPlayer's inventory. ok is false if the
// item no longer exists (already picked up, already despawned).
func (s *Store) PickUpGroundItem(ctx context.Context, groundItemID string) (groundItemRecord, bool, error) {
	rec, ok, err := s.GetGroundItem(ctx, groundItemID)
	if err != nil || !ok {
		return groundItemRecord{}, ok, err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, groundItemKey(groundItemID))
	pipe.SRem(ctx, mapGroundKey(rec.MapID), groundItemID)
	if _, err := pipe.Exec(ctx); err != nil {
		return groundItemRecord{}, false, fmt.Errorf("removing picked-up ground item %q: %w", groundItemID, err)
	}
	return rec, true, nil
}

// IsProtected reports whether groundItemID is still within its loot
// protection window and pickingUpPlayerID is not the original dropper
// (spec §4.3: "pickup validates proximity ... and loot protection window").
func (r groundItemRecord) IsProtected(pickingUpPlayerID string) bool {
	if r.DropperPlayerID == "" {
		return false
	}
	return pickingUpPlayerID != r.DropperPlayerID && time.Now().Before(r.ProtectionExpiresAt)
}
