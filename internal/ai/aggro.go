package ai

import (
	"math"

	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
)

// PlayerLookup provides the online players on a map, injected by the
// caller (the tick scheduler, which owns the live *model.Player
// registry) so this package never imports gameserver — the same
// callback-injection idiom the teacher uses for its ScanFunc/
// GetObjectFunc/AttackFunc to avoid model → ai → gameserver cycles.
type PlayerLookup interface {
	PlayersOnMap(mapID string) []*model.Player
	PlayerByID(playerID string) (*model.Player, bool)
}

// AcquireAggroTarget implements spec §4.7's aggro acquisition: among
// players on the entity's map, filter by Euclidean distance ≤
// aggroRadius, then by Bresenham LOS over grid, and return the closest
// valid target. A zero aggroRadius disables aggro (spec: "Zero radius
// disables aggro").
func AcquireAggroTarget(npcLoc model.Location, aggroRadius int32, grid geo.Grid, players []*model.Player) (*model.Player, bool) {
	if aggroRadius <= 0 {
		return nil, false
	}

	var best *model.Player
	bestDistSq := math.MaxFloat64

	for _, p := range players {
		if p.IsDead() {
			continue
		}
		loc := p.Location()
		if loc.MapID != npcLoc.MapID {
			continue
		}
		dx := float64(loc.X - npcLoc.X)
		dy := float64(loc.Y - npcLoc.Y)
		distSq := dx*dx + dy*dy
		if distSq > float64(aggroRadius)*float64(aggroRadius) {
			continue
		}
		if !geo.HasLineOfSight(grid, geo.Tile{X: npcLoc.X, Y: npcLoc.Y}, geo.Tile{X: loc.X, Y: loc.Y}) {
			continue
		}
		if distSq < bestDistSq {
			bestDistSq = distSq
			best = p
		}
	}

	return best, best != nil
}
