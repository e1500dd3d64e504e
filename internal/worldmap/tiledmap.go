// Package worldmap loads Tiled (.tmx) map data into the static,
// read-only shapes the rest of the server needs: a collision grid for
// pathfinding/LOS (spec §4.5), and the spawn points a map seeds its
// entity instances from (spec §4.4).
package worldmap

import (
	"fmt"
	"strings"

	"github.com/lafriks/go-tiled"
)

// collisionLayerName is the Tiled layer whose non-empty tiles mark
// impassable ground. World builders name it this by convention.
const collisionLayerName = "collision"

// spawnObjectGroupName is the Tiled object group holding entity spawn
// points, placed by map designers as point objects.
const spawnObjectGroupName = "spawns"

// TileMap is one loaded map's static, immutable world data: dimensions,
// a flattened collision grid, and its spawn points. Safe for concurrent
// read access from every goroutine touching this map once loaded.
type TileMap struct {
	ID         string
	Width      int32
	Height     int32
	TileWidth  int32
	TileHeight int32

	collision   []bool // row-major, len == Width*Height
	spawnPoints []SpawnPoint
}

// SpawnPoint is one static, Tiled-authored location an entity instance
// is created from at map load (spec §3's "Tile map (reference)").
type SpawnPoint struct {
	ID                string
	TemplateName      string
	X, Y              int32
	WanderRadius      int32
	AggroOverride     int32 // 0 means "use the template's default"
	DisengageOverride int32
}

// LoadTMX parses a Tiled map file into a TileMap keyed by mapID (the
// logical map identifier used throughout the rest of the server, not
// necessarily the file's basename).
func LoadTMX(mapID, path string) (*TileMap, error) {
	m, err := tiled.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading tiled map %q from %q: %w", mapID, path, err)
	}

	tm := &TileMap{
		ID:         mapID,
		Width:      int32(m.Width),
		Height:     int32(m.Height),
		TileWidth:  int32(m.TileWidth),
		TileHeight: int32(m.TileHeight),
		collision:  make([]bool, int(m.Width)*int(m.Height)),
	}

	for _, layer := range m.Layers {
		if !layerIsCollision(layer.Name) {
			continue
		}
		for i, t := range layer.Tiles {
			if t != nil && !t.IsNil() {
				tm.collision[i] = true
			}
		}
	}

	for _, group := range m.ObjectGroups {
		if !groupIsSpawns(group.Name) {
			continue
		}
		for _, obj := range group.Objects {
			sp := SpawnPoint{
				ID:           obj.Name,
				TemplateName: obj.Type,
				X:            int32(obj.X) / tm.TileWidth,
				Y:            int32(obj.Y) / tm.TileHeight,
			}
			if v, err := obj.Properties.GetInt("wander_radius"); err == nil {
				sp.WanderRadius = int32(v)
			}
			if v, err := obj.Properties.GetInt("aggro_radius"); err == nil {
				sp.AggroOverride = int32(v)
			}
			if v, err := obj.Properties.GetInt("disengage_radius"); err == nil {
				sp.DisengageOverride = int32(v)
			}
			tm.spawnPoints = append(tm.spawnPoints, sp)
		}
	}

	return tm, nil
}

func layerIsCollision(name string) bool {
	return strings.EqualFold(name, collisionLayerName)
}

func groupIsSpawns(name string) bool {
	return strings.EqualFold(name, spawnObjectGroupName)
}

// Blocked implements geo.Grid: out-of-bounds tiles and tiles on the
// collision layer are impassable.
func (tm *TileMap) Blocked(x, y int32) bool {
	if x < 0 || y < 0 || x >= tm.Width || y >= tm.Height {
		return true
	}
	return tm.collision[y*tm.Width+x]
}

// SpawnPoints returns the map's static spawn points.
func (tm *TileMap) SpawnPoints() []SpawnPoint {
	return tm.spawnPoints
}

// InBounds reports whether (x, y) is a valid tile coordinate on this map.
func (tm *TileMap) InBounds(x, y int32) bool {
	return x >= 0 && y >= 0 && x < tm.Width && y < tm.Height
}
