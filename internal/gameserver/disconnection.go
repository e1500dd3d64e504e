package gameserver

import (
	"context"
	"log/slog"
	"time"

	"github.com/udisondev/tileworld/internal/store/hotstore"
	"github.com/udisondev/tileworld/internal/store/postgres"
)

// disconnectTimeout bounds every DB/hot-store call made while tearing
// down a session, so a backend hiccup on logout can never hang the
// connection goroutine indefinitely.
const disconnectTimeout = 5 * time.Second

// OnDisconnection implements spec §7's logout semantics for a socket
// that voluntarily logged out or was lost: clear any entity aggro
// pointed at the player (so they return to spawn instead of chasing a
// ghost), announce PLAYER_LEFT to everyone who could see them, drop the
// player from the hot store's online set, flush inventory/equipment and
// a position checkpoint to the durable store, and unregister the
// session from both the client manager and the visual registry.
// Grounded on the teacher's Disconnection.onDisconnection/
// storeAndDelete pair (save-then-remove-from-world on socket loss),
// simplified here since this spec has no combat-logging grace window —
// §4.2 says disconnection cancels all in-flight work for the session
// immediately, with no delayed-removal case to reproduce.
func OnDisconnection(
	client *GameClient,
	clients *ClientManager,
	hot *hotstore.Store,
	players *postgres.PlayerRepository,
	invrepo *postgres.InventoryRepository,
	broadcast *Broadcaster,
) {
	player := client.ActivePlayer()
	if player == nil {
		// Never authenticated, or already torn down — nothing to do.
		return
	}

	// A fresh context, not the connection's own (which is already
	// canceled by the time this runs on socket loss).
	cctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()

	if err := hot.ClearPlayerAsTarget(cctx, player.ObjectID()); err != nil {
		slog.Error("disconnect: clearing aggro failed", "player_id", player.ObjectID(), "error", err)
	}

	// PlayerLeft also removes the player from the visual registry, so
	// this must run before ClientManager.Unregister drops the session
	// broadcast.forEachObserver would otherwise still be able to reach.
	if broadcast != nil {
		broadcast.PlayerLeft(player)
	}

	if err := hot.UnregisterOnline(cctx, player.ObjectID()); err != nil {
		slog.Error("disconnect: unregister online failed", "player_id", player.ObjectID(), "error", err)
	}

	if err := invrepo.SaveInventory(cctx, player.Inventory()); err != nil {
		slog.Error("disconnect: saving inventory failed", "player_id", player.ObjectID(), "error", err)
	}
	if err := invrepo.SaveEquipment(cctx, player.Equipment()); err != nil {
		slog.Error("disconnect: saving equipment failed", "player_id", player.ObjectID(), "error", err)
	}
	if err := players.SaveCheckpoint(cctx, player); err != nil {
		slog.Error("disconnect: saving player checkpoint failed", "player_id", player.ObjectID(), "error", err)
	}

	clients.Unregister(player.ObjectID())

	slog.Info("player disconnected", "player_id", player.ObjectID(), "username", player.Username())
}
