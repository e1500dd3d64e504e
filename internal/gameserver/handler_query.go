package gameserver

import (
	"context"

	"github.com/udisondev/tileworld/internal/protocol"
	"github.com/udisondev/tileworld/internal/resperr"
	"github.com/udisondev/tileworld/internal/worldmap"
)

// handleQueryInventory implements QUERY_INVENTORY: a snapshot of every
// occupied inventory slot.
func (h *Handler) handleQueryInventory(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	player := client.ActivePlayer()

	items := player.Inventory().Items()
	slots := make([]map[string]any, 0, len(items))
	for _, item := range items {
		_, slot := item.Location()
		slots = append(slots, map[string]any{
			"slot":          slot,
			"item_id":       item.ItemID(),
			"template_name": item.TemplateName(),
			"count":         item.Count(),
		})
	}

	return dataFrame(frame, map[string]any{"slots": slots})
}

// handleQueryEquipment implements QUERY_EQUIPMENT: every currently
// equipped item, keyed by slot.
func (h *Handler) handleQueryEquipment(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	player := client.ActivePlayer()

	equipped := make(map[string]any, len(player.Equipment().All()))
	for slot, item := range player.Equipment().All() {
		equipped[string(slot)] = map[string]any{
			"item_id":       item.ItemID(),
			"template_name": item.TemplateName(),
		}
	}

	return dataFrame(frame, map[string]any{"equipped": equipped})
}

// handleQueryStats implements QUERY_STATS: the player's level and HP
// plus the elementwise sum of the stats of every equipped item.
func (h *Handler) handleQueryStats(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	player := client.ActivePlayer()

	totals := player.Equipment().StatTotals(h.catalog.ItemStats)

	return dataFrame(frame, map[string]any{
		"level":        player.Level(),
		"current_hp":   player.CurrentHP(),
		"max_hp":       player.MaxHP(),
		"attack":       totals.Attack,
		"strength":     totals.Strength,
		"ranged_atk":   totals.RangedAtk,
		"ranged_str":   totals.RangedStr,
		"magic_atk":    totals.MagicAtk,
		"magic_dmg":    totals.MagicDmg,
		"physical_def": totals.PhysicalDef,
		"magic_def":    totals.MagicDef,
		"health_bonus": totals.Health,
		"speed":        totals.Speed,
	})
}

// handleQueryMapChunks implements QUERY_MAP_CHUNKS: the collision data
// for every game.chunk_size-tile chunk within the payload's `radius`
// chunks (default 2) of the player's current chunk, so the client can render newly-visible terrain without
// shipping the whole map up front.
func (h *Handler) handleQueryMapChunks(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	player := client.ActivePlayer()
	loc := player.Location()

	tm, ok := h.maps.Get(loc.MapID)
	if !ok {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "current map is not loaded"))
	}

	radius, ok := payloadInt(frame.Payload, "radius")
	if !ok || radius <= 0 {
		radius = 2
	}

	chunkSize := int32(h.cfg.Game.ChunkSize)
	if chunkSize <= 0 {
		chunkSize = 16
	}

	center := worldmap.ChunkOf(loc.X, loc.Y, chunkSize)
	chunks := make([]map[string]any, 0)
	for _, cc := range worldmap.ChunksWithinRadius(center, int32(radius)) {
		originX, originY := cc.CX*chunkSize, cc.CY*chunkSize
		var blocked []map[string]any
		for dy := int32(0); dy < chunkSize; dy++ {
			for dx := int32(0); dx < chunkSize; dx++ {
				x, y := originX+dx, originY+dy
				if !tm.InBounds(x, y) {
					continue
				}
				if tm.Blocked(x, y) {
					blocked = append(blocked, map[string]any{"x": x, "y": y})
				}
			}
		}
		chunks = append(chunks, map[string]any{
			"cx":      cc.CX,
			"cy":      cc.CY,
			"blocked": blocked,
		})
	}

	return dataFrame(frame, map[string]any{"map_id": loc.MapID, "chunks": chunks})
}
