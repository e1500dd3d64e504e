package model

// EntityInstance is a live, ephemeral spawn of an EntityTemplate on one
// map (spec §3). It lives only in the hot store; this struct is the Go
// value shape that (de)serializes to/from hot-store records, not a
// mutex-guarded live object the way Character/Player are — ticks read
// and write it wholesale through the store package.
type EntityInstance struct {
	InstanceID      string
	TemplateName    string
	MapID           string
	X, Y            int32
	SpawnX, SpawnY  int32
	CurrentHP       int32
	MaxHP           int32
	State           EntityState
	TargetPlayerID  string // empty if no current target
	WanderRadius    int32
	AggroRadius     int32
	DisengageRadius int32
	SpawnPointID    string
	LOSLostAtTick   int64 // 0 if LOS has not been lost
}

// IsDead reports whether the instance has reached zero HP.
func (e EntityInstance) IsDead() bool {
	return e.CurrentHP <= 0
}

// ObjectID returns the instance's hot-store key, satisfying the same
// ObjectID()-accessor convention as WorldObject so combat/AI code can
// treat players and entity instances uniformly as attack targets.
func (e EntityInstance) ObjectID() string {
	return e.InstanceID
}

// Location returns the instance's current position as a Location value.
func (e EntityInstance) Location() Location {
	return Location{X: e.X, Y: e.Y, MapID: e.MapID}
}

// HasTarget reports whether the instance currently has an assigned
// target player.
func (e EntityInstance) HasTarget() bool {
	return e.TargetPlayerID != ""
}

// DistanceFromSpawn returns the Manhattan distance from the instance's
// current position to its spawn point, used for leash/return checks.
func (e EntityInstance) DistanceFromSpawn() int32 {
	dx := e.X - e.SpawnX
	if dx < 0 {
		dx = -dx
	}
	dy := e.Y - e.SpawnY
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// RespawnQueueEntry is one row of the hot store's sorted respawn queue,
// scored by ReadyAtTick (spec §4.1's DespawnEntity contract).
type RespawnQueueEntry struct {
	InstanceID   string
	TemplateName string
	MapID        string
	SpawnPointID string
	ReadyAtTick  int64
}
