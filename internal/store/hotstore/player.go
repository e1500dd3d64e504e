package hotstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/resperr"
)

// playerPosition is the hot-store record for SetPlayerPosition/
// GetPlayerPosition: the small, hot-path-critical subset of a player's
// state that changes every tick a player moves.
type playerPosition struct {
	PlayerID string       `json:"player_id"`
	X        int32        `json:"x"`
	Y        int32        `json:"y"`
	MapID    string       `json:"map_id"`
	Facing   model.Facing `json:"facing"`
}

// playerFullState is the record RegisterOnline seeds and
// GetPlayerFullState reads back: everything an observer needs to
// render this player, minus inventory/equipment (fetched separately).
type playerFullState struct {
	PlayerID        string                 `json:"player_id"`
	Username        string                 `json:"username"`
	X               int32                  `json:"x"`
	Y               int32                  `json:"y"`
	MapID           string                 `json:"map_id"`
	Facing          model.Facing           `json:"facing"`
	CurrentHP       int32                  `json:"current_hp"`
	MaxHP           int32                  `json:"max_hp"`
	Level           int32                  `json:"level"`
	Role            model.Role             `json:"role"`
	PreviousX       int32                  `json:"previous_x"`
	PreviousY       int32                  `json:"previous_y"`
}

// RegisterOnline marks a player online, idempotent. Returns a
// resperr-wrapped error without registering if the player is
// currently banned or timed out.
func (s *Store) RegisterOnline(ctx context.Context, p *model.Player) error {
	if p.IsBanned() {
		return resperr.Permission(resperr.CodePlayerBanned, fmt.Sprintf("player %q is banned", p.Username()))
	}
	if p.IsTimedOut() {
		return resperr.Permission(resperr.CodePlayerTimedOut,
			fmt.Sprintf("player %q is timed out until %s", p.Username(), p.TimeoutUntil()))
	}

	loc := p.Location()
	state := playerFullState{
		PlayerID:  p.ObjectID(),
		Username:  p.Username(),
		X:         loc.X,
		Y:         loc.Y,
		MapID:     loc.MapID,
		Facing:    loc.Facing,
		CurrentHP: p.CurrentHP(),
		MaxHP:     p.MaxHP(),
		Level:     p.Level(),
		Role:      p.Role(),
		PreviousX: loc.X,
		PreviousY: loc.Y,
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling player full state: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, keyOnlinePlayers, p.ObjectID())
	pipe.Set(ctx, playerStateKey(p.ObjectID()), raw, s.entityTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("registering player %q online: %w", p.ObjectID(), err)
	}
	return nil
}

// UnregisterOnline marks a player offline, idempotent. It does not
// clear entity aggro on its own — callers pair this with
// Store.ClearPlayerAsTarget, since the hot store has no cross-manager
// transaction spanning both key families.
func (s *Store) UnregisterOnline(ctx context.Context, playerID string) error {
	pipe := s.rdb.TxPipeline()
	pipe.SRem(ctx, keyOnlinePlayers, playerID)
	pipe.Del(ctx, playerStateKey(playerID))
	pipe.Del(ctx, playerPosKey(playerID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("unregistering player %q: %w", playerID, err)
	}
	return nil
}

// SetPlayerPosition writes a player's position, refreshes its TTL, and
// records the previous position onto the full-state record
// (PreviousX/PreviousY; no caller outside this package reads them).
func (s *Store) SetPlayerPosition(ctx context.Context, playerID string, x, y int32, mapID string, facing model.Facing) error {
	raw, err := s.rdb.Get(ctx, playerStateKey(playerID)).Bytes()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("reading full state for %q: %w", playerID, err)
	}

	var state playerFullState
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &state); err != nil {
			return fmt.Errorf("unmarshaling full state for %q: %w", playerID, err)
		}
		state.PreviousX, state.PreviousY = state.X, state.Y
	} else {
		state.PlayerID = playerID
	}
	state.X, state.Y, state.MapID, state.Facing = x, y, mapID, facing

	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling full state for %q: %w", playerID, err)
	}

	pos := playerPosition{PlayerID: playerID, X: x, Y: y, MapID: mapID, Facing: facing}
	posRaw, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("marshaling position for %q: %w", playerID, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, playerStateKey(playerID), encoded, s.entityTTL)
	pipe.Set(ctx, playerPosKey(playerID), posRaw, s.entityTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing position for %q: %w", playerID, err)
	}
	return nil
}

// GetPlayerPosition returns a player's last written position. ok is
// false if the player is not online.
func (s *Store) GetPlayerPosition(ctx context.Context, playerID string) (x, y int32, mapID string, facing model.Facing, ok bool, err error) {
	raw, err := s.rdb.Get(ctx, playerPosKey(playerID)).Bytes()
	if err == redis.Nil {
		return 0, 0, "", 0, false, nil
	}
	if err != nil {
		return 0, 0, "", 0, false, fmt.Errorf("reading position for %q: %w", playerID, err)
	}
	var pos playerPosition
	if err := json.Unmarshal(raw, &pos); err != nil {
		return 0, 0, "", 0, false, fmt.Errorf("unmarshaling position for %q: %w", playerID, err)
	}
	return pos.X, pos.Y, pos.MapID, pos.Facing, true, nil
}

// GetPlayerFullState returns everything needed to render playerID to
// an observer. ok is false if the player is not online.
func (s *Store) GetPlayerFullState(ctx context.Context, playerID string) (state playerFullState, ok bool, err error) {
	raw, err := s.rdb.Get(ctx, playerStateKey(playerID)).Bytes()
	if err == redis.Nil {
		return playerFullState{}, false, nil
	}
	if err != nil {
		return playerFullState{}, false, fmt.Errorf("reading full state for %q: %w", playerID, err)
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return playerFullState{}, false, fmt.Errorf("unmarshaling full state for %q: %w", playerID, err)
	}
	return state, true, nil
}

// GetPlayersOnMap returns the IDs of every online player currently on mapID.
func (s *Store) GetPlayersOnMap(ctx context.Context, mapID string) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, keyOnlinePlayers).Result()
	if err != nil {
		return nil, fmt.Errorf("listing online players: %w", err)
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		state, ok, err := s.GetPlayerFullState(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok && state.MapID == mapID {
			out = append(out, id)
		}
	}
	return out, nil
}

// GetNearbyPlayers returns the IDs of online players on the same map as
// fromPlayerID within rangeTiles tiles on both axes (Chebyshev range,
// matching spec §4.9's visible-range test).
func (s *Store) GetNearbyPlayers(ctx context.Context, fromPlayerID string, rangeTiles int32) ([]string, error) {
	origin, ok, err := s.GetPlayerFullState(ctx, fromPlayerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	ids, err := s.GetPlayersOnMap(ctx, origin.MapID)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == fromPlayerID {
			continue
		}
		other, ok, err := s.GetPlayerFullState(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		dx, dy := other.X-origin.X, other.Y-origin.Y
		if dx < 0 {
			dx = -dx
		}
		if dy < 0 {
			dy = -dy
		}
		if dx <= rangeTiles && dy <= rangeTiles {
			out = append(out, id)
		}
	}
	return out, nil
}
