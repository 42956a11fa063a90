// Package ws is the real-time transport: JSON event envelopes over websocket
// connections, grouped for fan-out.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/mcoot/boardbank/internal/dependencies/clock"
	"github.com/mcoot/boardbank/internal/dependencies/random"
	"github.com/mcoot/boardbank/internal/model"
)

// Config holds websocket transport settings
type Config struct {
	SendBuffer     int           // Outbound frames queued per connection
	PingInterval   time.Duration // Time between keepalive pings
	WriteTimeout   time.Duration // Time allowed to write a frame or answer a ping
	ReadLimit      int64         // Largest inbound frame in bytes
	AllowedOrigins []string      // Extra origin patterns; same-origin is always allowed
}

// DefaultConfig returns the default transport settings
func DefaultConfig() Config {
	return Config{
		SendBuffer:   256,
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
		ReadLimit:    64 << 10,
	}
}

// Server upgrades HTTP requests to websocket connections and runs them
type Server struct {
	hub        *Hub
	dispatcher *Dispatcher
	clock      clock.Clock
	random     random.Random
	logger     *slog.Logger
	cfg        Config
}

// NewServer creates a new Server
func NewServer(hub *Hub, dispatcher *Dispatcher, clock clock.Clock, random random.Random, logger *slog.Logger, cfg Config) *Server {
	defaults := DefaultConfig()
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaults.SendBuffer
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = defaults.ReadLimit
	}
	return &Server{
		hub:        hub,
		dispatcher: dispatcher,
		clock:      clock,
		random:     random,
		logger:     logger.With(slog.String("component", "ws")),
		cfg:        cfg,
	}
}

// Hub returns the server's hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// ServeHTTP handles one websocket connection for its whole lifetime
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The HTTP server's request deadlines would otherwise outlive the upgrade
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  s.cfg.AllowedOrigins,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}
	conn.SetReadLimit(s.cfg.ReadLimit)

	id := model.ConnectionID(s.random.UUID())
	client := newClient(r.Context(), id, conn, s.cfg.SendBuffer, s.clock.Now())
	s.hub.Register(client)

	go s.writeLoop(client)
	go s.pingLoop(client)

	s.hub.Send(id, model.EventConnected, model.ConnectedPayload{ConnectionID: id})

	s.readLoop(client)

	client.close(websocket.StatusNormalClosure, "")
	s.hub.Unregister(client)
	s.dispatcher.Disconnected(context.WithoutCancel(client.ctx), id)
}

// readLoop handles inbound frames in arrival order until the connection ends
func (s *Server) readLoop(client *Client) {
	for {
		_, frame, err := client.conn.Read(client.ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				s.logger.Debug("ws read ended",
					slog.String("connection_id", string(client.id)),
					slog.String("error", err.Error()))
			}
			return
		}
		s.dispatcher.Handle(client.ctx, client.id, frame)
	}
}

func (s *Server) writeLoop(client *Client) {
	for {
		select {
		case <-client.Done():
			return
		case frame := <-client.send:
			ctx, cancel := context.WithTimeout(client.ctx, s.cfg.WriteTimeout)
			err := client.conn.Write(ctx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				s.logger.Debug("ws write failed",
					slog.String("connection_id", string(client.id)),
					slog.String("error", err.Error()))
				client.close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}

func (s *Server) pingLoop(client *Client) {
	ticker := s.clock.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-client.Done():
			return
		case <-ticker.C():
			ctx, cancel := context.WithTimeout(client.ctx, s.cfg.WriteTimeout)
			err := client.conn.Ping(ctx)
			cancel()
			if err != nil {
				s.logger.Info("ws ping failed",
					slog.String("connection_id", string(client.id)),
					slog.String("error", err.Error()))
				client.close(websocket.StatusGoingAway, "ping timeout")
				return
			}
		}
	}
}
