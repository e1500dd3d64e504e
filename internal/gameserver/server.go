package gameserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/tileworld/internal/auth"
	"github.com/udisondev/tileworld/internal/config"
	"github.com/udisondev/tileworld/internal/protocol"
	"github.com/udisondev/tileworld/internal/store/hotstore"
	"github.com/udisondev/tileworld/internal/store/postgres"
)

// upgrader negotiates the websocket handshake for every inbound
// connection. Origin checking is left permissive (CheckOrigin always
// true) since this is a game socket consumed by a dedicated client,
// not a browser page that needs same-origin protection.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server is the authoritative game server process: an HTTP listener
// serving the auth HTTP endpoints and the websocket upgrade endpoint
// that every authenticated game session rides on. Grounded on the
// teacher's Server/acceptLoop/handleConnection shape — one accept
// path handing each connection to its own goroutine running a read →
// dispatch → respond loop — adapted from a raw net.Listener TCP accept
// loop to an http.Server with a websocket-upgrade handler, since the
// wire transport here is websocket frames rather than a bespoke TCP
// packet format.
type Server struct {
	cfg     config.GameServer
	http    *http.Server
	handler *Handler
	clients *ClientManager

	hot       *hotstore.Store
	players   *postgres.PlayerRepository
	invrepo   *postgres.InventoryRepository
	broadcast *Broadcaster
}

// NewServer wires a Server from its collaborators and mounts its HTTP
// routes: the auth service's login/register endpoints and the
// websocket upgrade endpoint at cfg.WebsocketPath.
func NewServer(
	cfg config.GameServer,
	authSvc *auth.Service,
	handler *Handler,
	clients *ClientManager,
	hot *hotstore.Store,
	players *postgres.PlayerRepository,
	invrepo *postgres.InventoryRepository,
	broadcaster *Broadcaster,
) *Server {
	s := &Server{
		cfg:       cfg,
		handler:   handler,
		clients:   clients,
		hot:       hot,
		players:   players,
		invrepo:   invrepo,
		broadcast: broadcaster,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", authSvc.RegisterHandler)
	mux.HandleFunc("/auth/login", authSvc.LoginHandler)
	mux.HandleFunc(cfg.WebsocketPath, s.handleUpgrade)

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Addr returns the address the HTTP listener is bound to.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Run starts the HTTP listener and blocks until ctx is canceled,
// performing a graceful shutdown on cancellation.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("game server listening", "addr", s.http.Addr, "ws_path", s.cfg.WebsocketPath)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", "error", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

// handleUpgrade upgrades an inbound HTTP request to a websocket
// connection and runs its read → dispatch → respond loop until the
// socket closes.
func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}

	client := NewGameClient(conn, ip, s.cfg.SendQueueSize, s.cfg.WriteTimeout)
	slog.Info("client connected", "ip", ip)

	go client.writePump()
	defer client.Close()

	s.readLoop(r.Context(), client)

	OnDisconnection(client, s.clients, s.hot, s.players, s.invrepo, s.broadcast)
}

// readLoop decodes and dispatches frames from client in arrival order
// (spec §4.2: "frames from a single socket are handled in arrival
// order"), replying synchronously to each before reading the next.
func (s *Server) readLoop(ctx context.Context, client *GameClient) {
	readTimeout := s.cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	for {
		if err := client.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			slog.Warn("set read deadline failed", "client", client.IP(), "error", err)
			return
		}

		msgType, body, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read error", "client", client.IP(), "error", err)
			} else if !errors.Is(err, io.EOF) {
				slog.Debug("client disconnected", "client", client.IP(), "error", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		frame, err := protocol.DecodeFrame(body)
		if err != nil {
			slog.Warn("dropping malformed frame", "client", client.IP(), "error", err)
			continue
		}

		resp := s.handler.Dispatch(ctx, client, frame)
		if err := client.SendSync(resp, respSyncTimeout); err != nil {
			slog.Warn("sending response failed", "client", client.IP(), "error", err)
			return
		}
		if client.State() == StateDisconnected {
			return
		}
	}
}
