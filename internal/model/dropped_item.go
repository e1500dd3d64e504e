package model

import (
	"sync"
	"time"
)

// DroppedItem represents an item lying on a map tile: a ground item per
// spec §3 (ground_item_id, location, template_name, count, dropper_id,
// dropped_at, despawn_at).
type DroppedItem struct {
	*WorldObject // embedded for position and ObjectID

	item      *Item
	dropTime  time.Time
	despawnAt time.Time
	dropperID string // empty for entity drops

	mu sync.RWMutex
}

// NewDroppedItem creates a new dropped item at loc, despawning at despawnAt.
// dropperID is empty for entity drops (no protection window).
func NewDroppedItem(objectID string, item *Item, loc Location, dropperID string, despawnAt time.Time) *DroppedItem {
	if item == nil {
		panic("NewDroppedItem: item cannot be nil")
	}

	worldObj := NewWorldObject(objectID, "", loc)

	return &DroppedItem{
		WorldObject: worldObj,
		item:        item,
		dropTime:    time.Now(),
		despawnAt:   despawnAt,
		dropperID:   dropperID,
	}
}

// Item returns the item data (read-only).
func (d *DroppedItem) Item() *Item {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.item
}

// DropTime returns when the item was dropped.
func (d *DroppedItem) DropTime() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dropTime
}

// DespawnAt returns when the ground item is scheduled to be cleared from
// the world by the cold path's cleanup sweep.
func (d *DroppedItem) DespawnAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.despawnAt
}

// DropperID returns the ID of the player who dropped the item. Empty for
// entity drops.
func (d *DroppedItem) DropperID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dropperID
}

// IsProtected reports whether playerID is currently barred from picking
// up the item: for the first protectionWindow after the drop, only the
// dropper may take it. Items with no dropper (entity drops) are never
// protected.
func (d *DroppedItem) IsProtected(playerID string, protectionWindow time.Duration) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.dropperID == "" {
		return false
	}
	if time.Since(d.dropTime) > protectionWindow {
		return false
	}
	return playerID != d.dropperID
}
