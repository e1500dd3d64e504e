// Package protocol implements the wire framing for the game server's
// persistent binary channel: length-prefixed, msgpack-encoded frames
// of the shape {id, type, payload, version}.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// ProtocolVersion is stamped on every outbound frame. The Version of an
// inbound frame is not checked.
const ProtocolVersion = "1"

// MaxFrameLen bounds a single frame's encoded payload to guard against
// a malformed or hostile length header driving an unbounded allocation.
const MaxFrameLen = 64 * 1024

// MessageType is the closed enum carried in Frame.Type.
type MessageType string

const (
	// Inbound commands.
	MsgCmdAuthenticate     MessageType = "CMD_AUTHENTICATE"
	MsgCmdMove             MessageType = "CMD_MOVE"
	MsgCmdAttack           MessageType = "CMD_ATTACK"
	MsgCmdInventoryMove    MessageType = "CMD_INVENTORY_MOVE"
	MsgCmdInventorySort    MessageType = "CMD_INVENTORY_SORT"
	MsgCmdItemDrop         MessageType = "CMD_ITEM_DROP"
	MsgCmdItemPickup       MessageType = "CMD_ITEM_PICKUP"
	MsgCmdItemEquip        MessageType = "CMD_ITEM_EQUIP"
	MsgCmdItemUnequip      MessageType = "CMD_ITEM_UNEQUIP"
	MsgCmdChatSend         MessageType = "CMD_CHAT_SEND"
	MsgCmdUpdateAppearance    MessageType = "CMD_UPDATE_APPEARANCE"
	MsgCmdAdminGive           MessageType = "CMD_ADMIN_GIVE"
	MsgCmdToggleAutoRetaliate MessageType = "CMD_TOGGLE_AUTO_RETALIATE"
	MsgQueryInventory         MessageType = "QUERY_INVENTORY"
	MsgQueryEquipment         MessageType = "QUERY_EQUIPMENT"
	MsgQueryStats             MessageType = "QUERY_STATS"
	MsgQueryMapChunks         MessageType = "QUERY_MAP_CHUNKS"
	MsgQueryChatHistory       MessageType = "QUERY_CHAT_HISTORY"

	// Outbound responses.
	MsgRespSuccess MessageType = "RESP_SUCCESS"
	MsgRespError   MessageType = "RESP_ERROR"
	MsgRespData    MessageType = "RESP_DATA"

	// Outbound events.
	MsgEventWelcome         MessageType = "EVENT_WELCOME"
	MsgEventChunkUpdate     MessageType = "EVENT_CHUNK_UPDATE"
	MsgEventStateUpdate     MessageType = "EVENT_STATE_UPDATE"
	MsgEventGameUpdate      MessageType = "EVENT_GAME_UPDATE"
	MsgEventChatMessage     MessageType = "EVENT_CHAT_MESSAGE"
	MsgEventPlayerJoined    MessageType = "EVENT_PLAYER_JOINED"
	MsgEventPlayerLeft      MessageType = "EVENT_PLAYER_LEFT"
	MsgEventPlayerDied      MessageType = "EVENT_PLAYER_DIED"
	MsgEventPlayerRespawn   MessageType = "EVENT_PLAYER_RESPAWN"
	MsgEventCombatAction    MessageType = "EVENT_COMBAT_ACTION"
	MsgEventAppearanceUpdate MessageType = "EVENT_APPEARANCE_UPDATE"
	MsgEventEntitySpawned   MessageType = "EVENT_ENTITY_SPAWNED"
	MsgEventEntityUpdate    MessageType = "EVENT_ENTITY_UPDATE"
	MsgEventEntityDespawn   MessageType = "EVENT_ENTITY_DESPAWN"
	MsgEventServerShutdown  MessageType = "EVENT_SERVER_SHUTDOWN"
)

// Frame is the on-wire envelope for every message in either direction.
type Frame struct {
	ID      string         `msgpack:"id,omitempty"`
	Type    MessageType    `msgpack:"type"`
	Payload map[string]any `msgpack:"payload"`
	Version string         `msgpack:"version"`
}

// NewFrame builds an outbound frame stamped with the current protocol version.
func NewFrame(msgType MessageType, payload map[string]any) Frame {
	return Frame{Type: msgType, Payload: payload, Version: ProtocolVersion}
}

// WriteFrame msgpack-encodes frame and writes it to w as a 4-byte
// little-endian length prefix followed by the encoded body.
func WriteFrame(w io.Writer, frame Frame) error {
	if frame.Version == "" {
		frame.Version = ProtocolVersion
	}
	body, err := msgpack.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	if len(body) > MaxFrameLen {
		return fmt.Errorf("encoded frame %d bytes exceeds limit %d", len(body), MaxFrameLen)
	}

	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(body)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("writing frame body: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, fmt.Errorf("reading frame header: %w", err)
	}
	bodyLen := binary.LittleEndian.Uint32(header[:])
	if bodyLen == 0 {
		return Frame{}, fmt.Errorf("empty frame")
	}
	if bodyLen > MaxFrameLen {
		return Frame{}, fmt.Errorf("frame length %d exceeds limit %d", bodyLen, MaxFrameLen)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return Frame{}, fmt.Errorf("reading frame body: %w", err)
	}

	var frame Frame
	if err := msgpack.Unmarshal(body, &frame); err != nil {
		return Frame{}, fmt.Errorf("decoding frame: %w", err)
	}
	return frame, nil
}

// EncodeFrame msgpack-encodes frame without a length prefix, for use
// over a transport (such as gorilla/websocket) that already frames
// individual messages.
func EncodeFrame(frame Frame) ([]byte, error) {
	if frame.Version == "" {
		frame.Version = ProtocolVersion
	}
	body, err := msgpack.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}
	if len(body) > MaxFrameLen {
		return nil, fmt.Errorf("encoded frame %d bytes exceeds limit %d", len(body), MaxFrameLen)
	}
	return body, nil
}

// DecodeFrame msgpack-decodes a single websocket message body.
func DecodeFrame(body []byte) (Frame, error) {
	if len(body) > MaxFrameLen {
		return Frame{}, fmt.Errorf("frame length %d exceeds limit %d", len(body), MaxFrameLen)
	}
	var frame Frame
	if err := msgpack.Unmarshal(body, &frame); err != nil {
		return Frame{}, fmt.Errorf("decoding frame: %w", err)
	}
	return frame, nil
}
