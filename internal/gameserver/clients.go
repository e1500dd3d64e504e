package gameserver

import (
	"strings"
	"sync"

	"github.com/udisondev/tileworld/internal/model"
)

// ClientManager tracks every connected session and the player it carries.
// Thread-safe for concurrent access. Also satisfies ai.PlayerLookup so
// the tick scheduler can hand it straight to ai.ProcessEntities without
// either package importing the other (the teacher avoids the same cycle
// with callback injection; here an interface plays the same role).
type ClientManager struct {
	mu sync.RWMutex

	byPlayerID map[string]*GameClient
}

// NewClientManager creates an empty client manager.
func NewClientManager() *ClientManager {
	return &ClientManager{
		byPlayerID: make(map[string]*GameClient, 256),
	}
}

// Register associates a player with its session. Called once
// CMD_AUTHENTICATE succeeds.
func (cm *ClientManager) Register(client *GameClient) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.byPlayerID[client.PlayerID()] = client
}

// Unregister removes a session, called on disconnect or logout.
func (cm *ClientManager) Unregister(playerID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.byPlayerID, playerID)
}

// ClientByPlayerID returns the session for a player ID, nil if offline.
func (cm *ClientManager) ClientByPlayerID(playerID string) *GameClient {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.byPlayerID[playerID]
}

// Count returns the number of authenticated sessions.
func (cm *ClientManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.byPlayerID)
}

// ForEach iterates over every connected client. Stops early if fn
// returns false.
func (cm *ClientManager) ForEach(fn func(*GameClient) bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	for _, client := range cm.byPlayerID {
		if !fn(client) {
			return
		}
	}
}

// PlayersOnMap implements ai.PlayerLookup: every online player currently
// on mapID.
func (cm *ClientManager) PlayersOnMap(mapID string) []*model.Player {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	var out []*model.Player
	for _, client := range cm.byPlayerID {
		p := client.ActivePlayer()
		if p != nil && p.Location().MapID == mapID {
			out = append(out, p)
		}
	}
	return out
}

// PlayerByID implements ai.PlayerLookup: resolve one online player by ID.
func (cm *ClientManager) PlayerByID(playerID string) (*model.Player, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	client, ok := cm.byPlayerID[playerID]
	if !ok {
		return nil, false
	}
	p := client.ActivePlayer()
	return p, p != nil
}

// FindByUsername finds the online session whose player matches name,
// case-insensitively. Used by whisper/DM and admin-give target
// resolution. Returns nil if no match is online.
func (cm *ClientManager) FindByUsername(name string) *GameClient {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	lower := strings.ToLower(name)
	for _, client := range cm.byPlayerID {
		p := client.ActivePlayer()
		if p != nil && strings.ToLower(p.Username()) == lower {
			return client
		}
	}
	return nil
}
