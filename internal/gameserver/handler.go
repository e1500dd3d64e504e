package gameserver

import (
	"context"
	"log/slog"
	"time"

	"github.com/udisondev/tileworld/internal/auth"
	"github.com/udisondev/tileworld/internal/config"
	"github.com/udisondev/tileworld/internal/game/combat"
	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/protocol"
	"github.com/udisondev/tileworld/internal/resperr"
	"github.com/udisondev/tileworld/internal/store/hotstore"
	"github.com/udisondev/tileworld/internal/store/postgres"
	"github.com/udisondev/tileworld/internal/visual"
	"github.com/udisondev/tileworld/internal/worldmap"
)

// Handler dispatches one decoded inbound Frame to the command/query
// family that owns its MessageType, gated by the session's connection
// state (spec §4.2/§4.3). Grounded on the teacher's handler.go
// dispatch idiom — a state-gated switch returning a response for the
// caller to send — generalized from the teacher's ~80-opcode L2
// surface down to spec's much smaller command set, and from a
// write-into-shared-buffer return shape to returning a self-contained
// protocol.Frame (the new wire layer is a self-describing msgpack
// envelope, not a positional binary packet).
type Handler struct {
	cfg     config.GameServer
	maps    *worldmap.Registry
	catalog *Catalog
	hot     *hotstore.Store
	players *postgres.PlayerRepository
	invrepo *postgres.InventoryRepository
	combat  *combat.Manager
	visuals *visual.Registry
	clients *ClientManager
	tokens  *auth.TokenStore
	clock   *TickClock

	broadcast   *Broadcaster
	chatHistory *ChatHistory
}

// NewHandler wires a Handler from its collaborators. All are long-lived
// singletons constructed once at server startup.
func NewHandler(
	cfg config.GameServer,
	maps *worldmap.Registry,
	catalog *Catalog,
	hot *hotstore.Store,
	players *postgres.PlayerRepository,
	invrepo *postgres.InventoryRepository,
	combatMgr *combat.Manager,
	visuals *visual.Registry,
	clients *ClientManager,
	tokens *auth.TokenStore,
	clock *TickClock,
	broadcaster *Broadcaster,
) *Handler {
	return &Handler{
		cfg:         cfg,
		maps:        maps,
		catalog:     catalog,
		hot:         hot,
		players:     players,
		invrepo:     invrepo,
		combat:      combatMgr,
		visuals:     visuals,
		clients:     clients,
		tokens:      tokens,
		clock:       clock,
		broadcast:   broadcaster,
		chatHistory: NewChatHistory(),
	}
}

// Dispatch routes one inbound frame to its handler. The returned Frame
// is the direct response (RESP_SUCCESS/RESP_ERROR/RESP_DATA) for the
// frame that triggered the call; any additional broadcasts a handler
// must emit are sent directly via h.broadcast inside the handler, since
// they target different sockets than the caller's.
func (h *Handler) Dispatch(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	if client.State() == StateConnected || client.State() == StateAuthenticating {
		if frame.Type != protocol.MsgCmdAuthenticate {
			return errFrame(frame, resperr.Validation(resperr.CodeAuthFailed, "first frame must be CMD_AUTHENTICATE"))
		}
		return h.handleAuthenticate(ctx, client, frame)
	}

	if client.State() != StateAuthenticated {
		return errFrame(frame, resperr.Validation(resperr.CodeAuthFailed, "session is not authenticated"))
	}

	switch frame.Type {
	case protocol.MsgCmdMove:
		return h.handleMove(ctx, client, frame)
	case protocol.MsgCmdAttack:
		return h.handleAttack(ctx, client, frame)
	case protocol.MsgCmdToggleAutoRetaliate:
		return h.handleToggleAutoRetaliate(ctx, client, frame)
	case protocol.MsgCmdInventoryMove:
		return h.handleInventoryMove(ctx, client, frame)
	case protocol.MsgCmdInventorySort:
		return h.handleInventorySort(ctx, client, frame)
	case protocol.MsgCmdItemDrop:
		return h.handleItemDrop(ctx, client, frame)
	case protocol.MsgCmdItemPickup:
		return h.handleItemPickup(ctx, client, frame)
	case protocol.MsgCmdItemEquip:
		return h.handleItemEquip(ctx, client, frame)
	case protocol.MsgCmdItemUnequip:
		return h.handleItemUnequip(ctx, client, frame)
	case protocol.MsgCmdChatSend:
		return h.handleChatSend(ctx, client, frame)
	case protocol.MsgCmdUpdateAppearance:
		return h.handleUpdateAppearance(ctx, client, frame)
	case protocol.MsgCmdAdminGive:
		return h.handleAdminGive(ctx, client, frame)
	case protocol.MsgQueryInventory:
		return h.handleQueryInventory(ctx, client, frame)
	case protocol.MsgQueryEquipment:
		return h.handleQueryEquipment(ctx, client, frame)
	case protocol.MsgQueryStats:
		return h.handleQueryStats(ctx, client, frame)
	case protocol.MsgQueryMapChunks:
		return h.handleQueryMapChunks(ctx, client, frame)
	case protocol.MsgQueryChatHistory:
		return h.handleQueryChatHistory(ctx, client, frame)
	default:
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "unrecognized message type"))
	}
}

// grid resolves the collision grid for a player's current map, nil if
// the map is unknown (should not happen for a validated session, but
// handlers must still check since a map load failure is possible).
func (h *Handler) grid(mapID string) (geo.Grid, bool) {
	tm, ok := h.maps.Get(mapID)
	if !ok {
		return nil, false
	}
	return tm, true
}

// errFrame builds a RESP_ERROR response for frame's ID from a resperr.Error.
func errFrame(frame protocol.Frame, e *resperr.Error) protocol.Frame {
	payload := map[string]any{
		"error_code": e.Code,
		"category":   string(e.Category),
		"message":    e.Message,
	}
	if e.Details != nil {
		payload["details"] = e.Details
	}
	if e.RetryAfterMs > 0 {
		payload["retry_after"] = e.RetryAfterMs
	}
	if e.SuggestedAction != "" {
		payload["suggested_action"] = e.SuggestedAction
	}
	resp := protocol.NewFrame(protocol.MsgRespError, payload)
	resp.ID = frame.ID
	return resp
}

// successFrame builds a RESP_SUCCESS response for frame's ID.
func successFrame(frame protocol.Frame, payload map[string]any) protocol.Frame {
	resp := protocol.NewFrame(protocol.MsgRespSuccess, payload)
	resp.ID = frame.ID
	return resp
}

// dataFrame builds a RESP_DATA response for frame's ID.
func dataFrame(frame protocol.Frame, payload map[string]any) protocol.Frame {
	resp := protocol.NewFrame(protocol.MsgRespData, payload)
	resp.ID = frame.ID
	return resp
}

// systemErrFrame wraps an unexpected internal error (store failure,
// etc.) as a RESP_ERROR with category "system", logging the underlying
// cause for operators without leaking it to the client.
func systemErrFrame(frame protocol.Frame, context string, err error) protocol.Frame {
	slog.Error("internal error handling frame", "context", context, "type", frame.Type, "error", err)
	return errFrame(frame, resperr.System(resperr.CodeSysInternalError, "an internal error occurred", 1000))
}

// payloadString reads a required string field from a frame payload.
func payloadString(payload map[string]any, key string) (string, bool) {
	v, ok := payload[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// payloadInt reads a required integer field from a frame payload.
// msgpack decodes numeric payload fields as int64 or float64 depending
// on the encoder, so both are accepted.
func payloadInt(payload map[string]any, key string) (int64, bool) {
	v, ok := payload[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

const respSyncTimeout = 5 * time.Second
