package worldmap

import (
	"fmt"
	"sync"
)

// Registry holds every loaded TileMap for the process lifetime, keyed
// by map ID. Maps are loaded once at startup and never mutated, so
// reads need no locking beyond what protects the map itself during load.
type Registry struct {
	mu   sync.RWMutex
	maps map[string]*TileMap
}

// NewRegistry creates an empty map registry.
func NewRegistry() *Registry {
	return &Registry{maps: make(map[string]*TileMap)}
}

// LoadTMX loads a Tiled file and registers it under mapID.
func (r *Registry) LoadTMX(mapID, path string) error {
	tm, err := LoadTMX(mapID, path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maps[mapID] = tm
	return nil
}

// Get returns the loaded map for mapID, or false if it was never loaded.
func (r *Registry) Get(mapID string) (*TileMap, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tm, ok := r.maps[mapID]
	return tm, ok
}

// MustGet returns the loaded map for mapID or an error naming it, for
// call sites where a missing map is a configuration bug rather than an
// expected runtime outcome.
func (r *Registry) MustGet(mapID string) (*TileMap, error) {
	tm, ok := r.Get(mapID)
	if !ok {
		return nil, fmt.Errorf("map %q is not loaded", mapID)
	}
	return tm, nil
}

// MapIDs returns every currently loaded map ID.
func (r *Registry) MapIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.maps))
	for id := range r.maps {
		ids = append(ids, id)
	}
	return ids
}
