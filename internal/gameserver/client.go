package gameserver

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/protocol"
)

// Default write queue / timeout constants, overridden by config values
// when available.
const (
	defaultSendQueueSize = 256
	defaultWriteTimeout  = 5 * time.Second
	defaultReadTimeout   = 120 * time.Second
)

// GameClient represents one authenticated websocket connection and the
// player session it carries (spec §4.2). One GameClient exists per
// socket for its entire lifetime; it is never reused across
// reconnections.
type GameClient struct {
	conn *websocket.Conn
	ip   string

	// state uses atomic.Int32 for lock-free reads on the hot path (every
	// inbound frame checks it before dispatch).
	state atomic.Int32

	mu           sync.RWMutex
	playerID     string
	activePlayer *model.Player

	// sendCh is the per-client outbound queue: one dedicated writer
	// goroutine per socket drains it (spec §5's "one worker per socket
	// for outbound frame encoding and send"). Pattern carried over from
	// the teacher's GameClient write-pump (sendCh + closeCh + writePump),
	// adapted from net.Buffers batching over a raw net.Conn to one
	// websocket.BinaryMessage write per queued frame, since gorilla's
	// connection does not expose a writev-equivalent.
	sendCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once

	writeTimeout time.Duration
}

// NewGameClient creates client state for an upgraded websocket connection.
func NewGameClient(conn *websocket.Conn, ip string, sendQueueSize int, writeTimeout time.Duration) *GameClient {
	if sendQueueSize <= 0 {
		sendQueueSize = defaultSendQueueSize
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	c := &GameClient{
		conn:         conn,
		ip:           ip,
		sendCh:       make(chan []byte, sendQueueSize),
		closeCh:      make(chan struct{}),
		writeTimeout: writeTimeout,
	}
	c.state.Store(int32(StateConnected))
	return c
}

// IP returns the client's remote address.
func (c *GameClient) IP() string { return c.ip }

// State returns the current connection state.
func (c *GameClient) State() ClientConnectionState {
	return ClientConnectionState(c.state.Load())
}

// SetState sets the connection state.
func (c *GameClient) SetState(s ClientConnectionState) {
	c.state.Store(int32(s))
}

// PlayerID returns the authenticated player's ID, empty before auth.
func (c *GameClient) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// ActivePlayer returns the session's live player object, nil before auth.
func (c *GameClient) ActivePlayer() *model.Player {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activePlayer
}

// BindPlayer associates the session with a loaded player, called once
// authentication succeeds.
func (c *GameClient) BindPlayer(p *model.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = p.ObjectID()
	c.activePlayer = p
}

// writePump is the client's dedicated writer goroutine: drains sendCh
// and writes each queued frame as one websocket binary message.
func (c *GameClient) writePump() {
	for {
		select {
		case frame, ok := <-c.sendCh:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				slog.Warn("set write deadline failed", "client", c.ip, "error", err)
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				slog.Warn("write failed", "client", c.ip, "error", err)
				return
			}
		case <-c.closeCh:
			return
		}
	}
}

// Send queues a frame for async delivery. Non-blocking: a full queue
// disconnects the slow client rather than stalling the caller (spec
// §5's "outbound send buffer per session is bounded; if it fills, the
// session is disconnected with a backpressure error").
func (c *GameClient) Send(frame protocol.Frame) error {
	body, err := protocol.EncodeFrame(frame)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	select {
	case c.sendCh <- body:
		return nil
	default:
		slog.Warn("send queue full, disconnecting slow client", "client", c.ip)
		c.CloseAsync()
		return fmt.Errorf("send queue full")
	}
}

// SendSync queues a frame and blocks until accepted or timeout. Used for
// handler responses that must be delivered (the RESP_* for the frame
// that triggered this handler call).
func (c *GameClient) SendSync(frame protocol.Frame, timeout time.Duration) error {
	body, err := protocol.EncodeFrame(frame)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case c.sendCh <- body:
		return nil
	case <-timer.C:
		return fmt.Errorf("send timeout after %v", timeout)
	case <-c.closeCh:
		return fmt.Errorf("client closed")
	}
}

// CloseAsync signals the writePump to stop without blocking. Safe to
// call multiple times.
func (c *GameClient) CloseAsync() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateDisconnected))
		close(c.closeCh)
	})
}

// Close closes the connection and stops the writePump.
func (c *GameClient) Close() error {
	c.CloseAsync()
	return c.conn.Close()
}
