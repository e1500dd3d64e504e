package gameserver

import (
	"context"
	"strings"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/protocol"
	"github.com/udisondev/tileworld/internal/resperr"
)

// handleChatSend implements CMD_CHAT_SEND (spec §4.3/§6): routes a
// message to one of three channels. `local` reaches every online
// player within chat.local_chunk_radius chunks on the same map, `global`
// requires the sender's role to be in chat.global_allowed_roles, and
// `dm` resolves its recipient by username and requires them online.
func (h *Handler) handleChatSend(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	sender := client.ActivePlayer()

	channelName, ok := payloadString(frame.Payload, "channel")
	if !ok {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing channel"))
	}
	channel := ChatChannel(channelName)
	if !channel.IsValid() {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "unrecognized chat channel"))
	}

	text, ok := payloadString(frame.Payload, "message")
	if !ok {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing message"))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return errFrame(frame, resperr.Validation(resperr.CodeChatEmpty, "message is empty"))
	}

	switch channel {
	case ChatLocal:
		return h.sendLocalChat(ctx, sender, text, frame)
	case ChatGlobal:
		return h.sendGlobalChat(ctx, sender, text, frame)
	case ChatDM:
		return h.sendDirectMessage(ctx, sender, text, frame)
	default:
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "unrecognized chat channel"))
	}
}

func (h *Handler) sendLocalChat(ctx context.Context, sender *model.Player, text string, frame protocol.Frame) protocol.Frame {
	if len(text) > h.cfg.Chat.MaxMessageLengthLocal {
		text = text[:h.cfg.Chat.MaxMessageLengthLocal]
	}

	loc := sender.Location()
	rangeTiles := int32(h.cfg.Chat.LocalChunkRadius * h.cfg.Game.ChunkSize)
	if rangeTiles <= 0 {
		rangeTiles = int32(h.cfg.Game.ChunkSize)
	}

	event := protocol.NewFrame(protocol.MsgEventChatMessage, map[string]any{
		"channel":   string(ChatLocal),
		"sender_id": sender.ObjectID(),
		"sender":    sender.Username(),
		"message":   text,
	})

	for _, p := range h.clients.PlayersOnMap(loc.MapID) {
		if !loc.WithinChebyshev(p.Location(), rangeTiles) {
			continue
		}
		if c := h.clients.ClientByPlayerID(p.ObjectID()); c != nil {
			_ = c.Send(event)
		}
	}
	h.chatHistory.Add("local:"+loc.MapID, ChatEntry{
		Channel: string(ChatLocal), SenderID: sender.ObjectID(), Sender: sender.Username(), Message: text,
	})

	return successFrame(frame, map[string]any{"channel": string(ChatLocal)})
}

func (h *Handler) sendGlobalChat(ctx context.Context, sender *model.Player, text string, frame protocol.Frame) protocol.Frame {
	if !h.cfg.Chat.GlobalEnabled {
		return errFrame(frame, resperr.Permission(resperr.CodeChatRoleDenied, "global chat is disabled"))
	}
	if !roleAllowed(sender.Role(), h.cfg.Chat.GlobalAllowedRoles) {
		return errFrame(frame, resperr.Permission(resperr.CodeChatRoleDenied, "your role may not use global chat"))
	}
	if len(text) > h.cfg.Chat.MaxMessageLengthGlobal {
		text = text[:h.cfg.Chat.MaxMessageLengthGlobal]
	}

	event := protocol.NewFrame(protocol.MsgEventChatMessage, map[string]any{
		"channel":   string(ChatGlobal),
		"sender_id": sender.ObjectID(),
		"sender":    sender.Username(),
		"message":   text,
	})

	h.clients.ForEach(func(c *GameClient) bool {
		_ = c.Send(event)
		return true
	})
	h.chatHistory.Add("global", ChatEntry{
		Channel: string(ChatGlobal), SenderID: sender.ObjectID(), Sender: sender.Username(), Message: text,
	})

	return successFrame(frame, map[string]any{"channel": string(ChatGlobal)})
}

func (h *Handler) sendDirectMessage(ctx context.Context, sender *model.Player, text string, frame protocol.Frame) protocol.Frame {
	recipientName, ok := payloadString(frame.Payload, "recipient")
	if !ok || recipientName == "" {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing recipient"))
	}
	if len(text) > h.cfg.Chat.MaxMessageLengthDM {
		text = text[:h.cfg.Chat.MaxMessageLengthDM]
	}

	recipient := h.clients.FindByUsername(recipientName)
	if recipient == nil {
		return errFrame(frame, resperr.Validation(resperr.CodePlayerNotOnline, "recipient is not online"))
	}

	event := protocol.NewFrame(protocol.MsgEventChatMessage, map[string]any{
		"channel":   string(ChatDM),
		"sender_id": sender.ObjectID(),
		"sender":    sender.Username(),
		"message":   text,
	})
	if err := recipient.Send(event); err != nil {
		return systemErrFrame(frame, "dm: send to recipient", err)
	}
	h.chatHistory.Add(dmScope(sender.Username(), recipientName), ChatEntry{
		Channel: string(ChatDM), SenderID: sender.ObjectID(), Sender: sender.Username(), Message: text,
	})

	return successFrame(frame, map[string]any{"channel": string(ChatDM), "recipient": recipientName})
}

// handleQueryChatHistory implements QUERY_CHAT_HISTORY: replays the
// channel-scope's buffered history (spec.md §3: "in-memory history for
// replay within a short window"). `local` and `global` take no further
// payload beyond `channel`; `dm` additionally requires `recipient` to
// identify which pair's history to replay.
func (h *Handler) handleQueryChatHistory(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	sender := client.ActivePlayer()

	channelName, ok := payloadString(frame.Payload, "channel")
	if !ok {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing channel"))
	}
	channel := ChatChannel(channelName)
	if !channel.IsValid() {
		return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "unrecognized chat channel"))
	}

	var scope string
	switch channel {
	case ChatLocal:
		scope = "local:" + sender.Location().MapID
	case ChatGlobal:
		scope = "global"
	case ChatDM:
		recipientName, ok := payloadString(frame.Payload, "recipient")
		if !ok || recipientName == "" {
			return errFrame(frame, resperr.Validation(resperr.CodeValidationFailed, "missing recipient"))
		}
		scope = dmScope(sender.Username(), recipientName)
	}

	entries := h.chatHistory.Recent(scope)
	messages := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, map[string]any{
			"channel":   e.Channel,
			"sender_id": e.SenderID,
			"sender":    e.Sender,
			"message":   e.Message,
		})
	}

	return dataFrame(frame, map[string]any{"channel": string(channel), "messages": messages})
}

// roleAllowed reports whether role's name appears in allowed.
func roleAllowed(role model.Role, allowed []string) bool {
	for _, r := range allowed {
		if strings.EqualFold(r, string(role)) {
			return true
		}
	}
	return false
}
