package gameserver

import (
	"log/slog"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/protocol"
	"github.com/udisondev/tileworld/internal/visual"
)

// broadcastVisibleChunkRadius bounds how many chunks out from a player's
// own chunk still counts as visible for move/combat/appearance events
// (spec §4.9's visible-range broadcast). Grounded on the teacher's
// BroadcastToVisibleNear/BroadcastToVisibleByLOD idiom — a bounded
// radius around the source rather than a server-wide fan-out — adapted
// from the teacher's continuous-coordinate region index to spec's
// tile/chunk grid.
const broadcastVisibleChunkRadius = 2

// Broadcaster sends game events to every online player who can currently
// see their source, using visual.Registry to avoid resending an
// unchanged appearance payload to an observer that already has it (spec
// §4.9). It owns all fan-out-to-other-sockets delivery; Handler methods
// only ever build the direct response to the caller's own frame and
// hand everything else to a Broadcaster method.
type Broadcaster struct {
	clients   *ClientManager
	visuals   *visual.Registry
	chunkSize int32
}

// NewBroadcaster creates a Broadcaster. chunkSize must match
// config.GameConfig.ChunkSize. The visible range is chunkSize ×
// broadcastVisibleChunkRadius tiles; it does not follow chat's
// local_chunk_radius setting.
func NewBroadcaster(clients *ClientManager, visuals *visual.Registry, chunkSize int32) *Broadcaster {
	if chunkSize <= 0 {
		chunkSize = 16
	}
	return &Broadcaster{clients: clients, visuals: visuals, chunkSize: chunkSize}
}

// visibleRangeTiles is the Chebyshev tile range two players must be
// within, on the same map, to be mutually visible.
func (b *Broadcaster) visibleRangeTiles() int32 {
	return b.chunkSize * broadcastVisibleChunkRadius
}

// forEachObserver invokes fn for every online player other than
// source who is within visible range of source's current location.
func (b *Broadcaster) forEachObserver(source *model.Player, fn func(observer *model.Player, client *GameClient)) {
	loc := source.Location()
	for _, p := range b.clients.PlayersOnMap(loc.MapID) {
		if p.ObjectID() == source.ObjectID() {
			continue
		}
		if !loc.WithinChebyshev(p.Location(), b.visibleRangeTiles()) {
			continue
		}
		client := b.clients.ClientByPlayerID(p.ObjectID())
		if client == nil {
			continue
		}
		fn(p, client)
	}
}

// send delivers frame to client, logging (not propagating) a failure —
// one observer's dead socket must never interrupt a broadcast to the rest.
func (b *Broadcaster) send(client *GameClient, frame protocol.Frame) {
	if err := client.Send(frame); err != nil {
		slog.Warn("broadcast send failed", "player_id", client.PlayerID(), "error", err)
	}
}

// PlayerJoined announces a freshly authenticated player to everyone
// within visible range, attaching the full visual payload since none of
// them have seen this player's current hash before.
func (b *Broadcaster) PlayerJoined(player *model.Player) {
	loc := player.Location()
	sourceClient := b.clients.ClientByPlayerID(player.ObjectID())

	b.forEachObserver(player, func(observer *model.Player, client *GameClient) {
		b.send(client, playerJoinedFrame(b.visuals, observer.ObjectID(), player, loc))

		// The new arrival must also be told about everyone already
		// standing nearby — their own client has no prior state at all.
		if sourceClient != nil {
			b.send(sourceClient, playerJoinedFrame(b.visuals, player.ObjectID(), observer, observer.Location()))
		}
	})
}

// playerJoinedFrame builds an EVENT_PLAYER_JOINED payload describing
// subject as seen by observerID, attaching the full visual payload only
// the first time observerID sees subject's current visual hash.
func playerJoinedFrame(visuals *visual.Registry, observerID string, subject *model.Player, loc model.Location) protocol.Frame {
	hash, full := visuals.VisualForObserver(observerID, subject.ObjectID(), subject.VisualState())
	payload := map[string]any{
		"player_id":   subject.ObjectID(),
		"username":    subject.Username(),
		"map_id":      loc.MapID,
		"x":           loc.X,
		"y":           loc.Y,
		"facing":      loc.Facing.String(),
		"visual_hash": hash,
	}
	if full != nil {
		payload["appearance"] = full.Appearance
		payload["equipment"] = full.Equipment
	}
	return protocol.NewFrame(protocol.MsgEventPlayerJoined, payload)
}

// PlayerLeft announces a disconnecting or logging-out player to
// everyone who could see them.
func (b *Broadcaster) PlayerLeft(player *model.Player) {
	event := protocol.NewFrame(protocol.MsgEventPlayerLeft, map[string]any{
		"player_id": player.ObjectID(),
	})
	b.forEachObserver(player, func(_ *model.Player, client *GameClient) {
		b.send(client, event)
	})
	b.visuals.RemoveEntity(player.ObjectID())
	b.visuals.RemoveObserver(player.ObjectID())
}

// PlayerMoved announces a completed CMD_MOVE to everyone within visible
// range of the player's new position.
func (b *Broadcaster) PlayerMoved(player *model.Player) {
	loc := player.Location()
	event := protocol.NewFrame(protocol.MsgEventStateUpdate, map[string]any{
		"player_id": player.ObjectID(),
		"map_id":    loc.MapID,
		"x":         loc.X,
		"y":         loc.Y,
		"facing":    loc.Facing.String(),
	})
	b.forEachObserver(player, func(_ *model.Player, client *GameClient) {
		b.send(client, event)
	})
}

// AppearanceUpdated announces a changed appearance or equipment loadout,
// invalidating any observer's cached hash by virtue of visuals.Register
// already having been called by the handler before this runs.
func (b *Broadcaster) AppearanceUpdated(player *model.Player, hash string) {
	b.forEachObserver(player, func(observer *model.Player, client *GameClient) {
		oh, full := b.visuals.VisualForObserver(observer.ObjectID(), player.ObjectID(), player.VisualState())
		payload := map[string]any{
			"player_id":   player.ObjectID(),
			"visual_hash": oh,
		}
		if full != nil {
			payload["appearance"] = full.Appearance
			payload["equipment"] = full.Equipment
		}
		b.send(client, protocol.NewFrame(protocol.MsgEventAppearanceUpdate, payload))
	})
}

// CombatAction announces an attack's outcome to everyone within visible
// range of the attacker, regardless of which side they are observing.
func (b *Broadcaster) CombatAction(attacker *model.Player, targetID string, damage int32, miss, targetDied bool) {
	event := protocol.NewFrame(protocol.MsgEventCombatAction, map[string]any{
		"attacker_id": attacker.ObjectID(),
		"target_id":   targetID,
		"damage":      damage,
		"miss":        miss,
		"killed":      targetDied,
	})
	b.forEachObserver(attacker, func(_ *model.Player, client *GameClient) {
		b.send(client, event)
	})
}

// PlayerDied announces a player's death to everyone within visible
// range.
func (b *Broadcaster) PlayerDied(player *model.Player) {
	event := protocol.NewFrame(protocol.MsgEventPlayerDied, map[string]any{
		"player_id": player.ObjectID(),
	})
	b.forEachObserver(player, func(_ *model.Player, client *GameClient) {
		b.send(client, event)
	})
}

// forEachObserverNear is forEachObserver generalized to an arbitrary
// source location, used for entity broadcasts where there is no
// *model.Player to exclude.
func (b *Broadcaster) forEachObserverNear(loc model.Location, fn func(client *GameClient)) {
	for _, p := range b.clients.PlayersOnMap(loc.MapID) {
		if !loc.WithinChebyshev(p.Location(), b.visibleRangeTiles()) {
			continue
		}
		client := b.clients.ClientByPlayerID(p.ObjectID())
		if client == nil {
			continue
		}
		fn(client)
	}
}

// entityFrame builds the common payload shape shared by entity spawn/
// move/despawn events. Entity templates carry no customizable
// appearance, so unlike players there is no visual-fingerprint
// deduplication step here — the whole record is cheap to resend.
func entityFrame(msgType protocol.MessageType, inst model.EntityInstance) protocol.Frame {
	loc := inst.Location()
	return protocol.NewFrame(msgType, map[string]any{
		"instance_id":   inst.InstanceID,
		"template_name": inst.TemplateName,
		"map_id":        loc.MapID,
		"x":             loc.X,
		"y":             loc.Y,
		"current_hp":    inst.CurrentHP,
		"max_hp":        inst.MaxHP,
		"state":         inst.State.String(),
	})
}

// EntitySpawned announces a newly materialized entity instance (initial
// map seeding or a respawn) to everyone within visible range.
func (b *Broadcaster) EntitySpawned(inst model.EntityInstance) {
	b.forEachObserverNear(inst.Location(), func(client *GameClient) {
		b.send(client, entityFrame(protocol.MsgEventEntitySpawned, inst))
	})
}

// EntityUpdated announces an entity instance's new position/state,
// called once per tick for every entity whose position or state
// machine transitioned (spec §4.4 step 5, §4.9).
func (b *Broadcaster) EntityUpdated(inst model.EntityInstance) {
	b.forEachObserverNear(inst.Location(), func(client *GameClient) {
		b.send(client, entityFrame(protocol.MsgEventEntityUpdate, inst))
	})
}

// EntityDespawned announces an entity instance leaving the active set
// (death or any other removal) to everyone who could still see it at
// its last known location.
func (b *Broadcaster) EntityDespawned(inst model.EntityInstance) {
	event := protocol.NewFrame(protocol.MsgEventEntityDespawn, map[string]any{
		"instance_id": inst.InstanceID,
	})
	b.forEachObserverNear(inst.Location(), func(client *GameClient) {
		b.send(client, event)
	})
}

// PlayerRespawn announces a player's respawn at a new location.
func (b *Broadcaster) PlayerRespawn(player *model.Player) {
	loc := player.Location()
	event := protocol.NewFrame(protocol.MsgEventPlayerRespawn, map[string]any{
		"player_id": player.ObjectID(),
		"map_id":    loc.MapID,
		"x":         loc.X,
		"y":         loc.Y,
		"current_hp": player.CurrentHP(),
	})
	b.forEachObserver(player, func(_ *model.Player, client *GameClient) {
		b.send(client, event)
	})
}
