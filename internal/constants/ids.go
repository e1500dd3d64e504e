package constants

import "github.com/google/uuid"

// NewObjectID generates a fresh unique identifier for a world object
// (player session, NPC/monster instance, or dropped item). The L2
// teacher partitions a uint32 range by object category (player/NPC/
// item); this spec's entities carry string IDs end to end (wire
// payloads, hot-store keys, DB foreign keys), so a UUID replaces the
// range scheme rather than reimplementing it.
func NewObjectID() string {
	return uuid.NewString()
}
