package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

// ServerConfig holds configuration for the HTTP server
type ServerConfig struct {
	Host              string
	Port              int // Zero picks a free port
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultServerConfig returns sensible defaults for server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:              8080,
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   30 * time.Second,
	}
}

// Server serves the API and websocket endpoint. Websocket connections live
// for a whole game, so only header reads are bounded; per-frame deadlines are
// the transport's job.
type Server struct {
	server   *http.Server
	listener net.Listener
	logger   *slog.Logger
	config   ServerConfig
}

// NewServer binds the listen address immediately so Addr is known before
// Start is called
func NewServer(handler http.Handler, config ServerConfig, logger *slog.Logger) (*Server, error) {
	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	return &Server{
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		listener: listener,
		logger:   logger.With(slog.String("component", "server")),
		config:   config,
	}, nil
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", slog.String("addr", s.Addr()))

	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Hijacked websocket connections are not tracked by the HTTP server and are
// closed by their own contexts.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Addr returns the bound listen address
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}
