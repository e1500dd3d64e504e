package worldmap

import "testing"

func newTestMap() *TileMap {
	// 3x3 grid, row-major; tile (1,1) is blocked.
	collision := make([]bool, 9)
	collision[1*3+1] = true
	return &TileMap{
		ID:         "overworld",
		Width:      3,
		Height:     3,
		TileWidth:  32,
		TileHeight: 32,
		collision:  collision,
		spawnPoints: []SpawnPoint{
			{ID: "sp-1", TemplateName: "goblin", X: 2, Y: 2, WanderRadius: 3},
		},
	}
}

func TestTileMap_Blocked_OutOfBounds(t *testing.T) {
	tm := newTestMap()
	cases := []struct{ x, y int32 }{{-1, 0}, {0, -1}, {3, 0}, {0, 3}}
	for _, c := range cases {
		if !tm.Blocked(c.x, c.y) {
			t.Errorf("Blocked(%d, %d) = false, want true for out-of-bounds tile", c.x, c.y)
		}
	}
}

func TestTileMap_Blocked_CollisionTile(t *testing.T) {
	tm := newTestMap()
	if !tm.Blocked(1, 1) {
		t.Error("Blocked(1, 1) = false, want true for a collision tile")
	}
	if tm.Blocked(0, 0) {
		t.Error("Blocked(0, 0) = true, want false for an open tile")
	}
}

func TestTileMap_InBounds(t *testing.T) {
	tm := newTestMap()
	if !tm.InBounds(2, 2) {
		t.Error("InBounds(2, 2) = false, want true")
	}
	if tm.InBounds(3, 0) {
		t.Error("InBounds(3, 0) = true, want false")
	}
}

func TestTileMap_SpawnPoints(t *testing.T) {
	tm := newTestMap()
	sps := tm.SpawnPoints()
	if len(sps) != 1 || sps[0].ID != "sp-1" || sps[0].TemplateName != "goblin" {
		t.Errorf("SpawnPoints() = %+v, want one goblin spawn point sp-1", sps)
	}
}

func TestRegistry_LoadAndGet(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get("overworld"); ok {
		t.Fatal("Get() found a map before any was registered")
	}

	r.mu.Lock()
	r.maps["overworld"] = newTestMap()
	r.mu.Unlock()

	tm, ok := r.Get("overworld")
	if !ok || tm.ID != "overworld" {
		t.Errorf("Get(\"overworld\") = %v, %v, want the registered map", tm, ok)
	}

	if _, err := r.MustGet("nonexistent"); err == nil {
		t.Error("MustGet() on an unregistered map: error = nil, want error")
	}
}
