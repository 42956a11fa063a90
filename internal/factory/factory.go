package factory

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/boardbank/internal/api"
	"github.com/mcoot/boardbank/internal/api/handler"
	"github.com/mcoot/boardbank/internal/config"
	"github.com/mcoot/boardbank/internal/dependencies/clock"
	"github.com/mcoot/boardbank/internal/dependencies/random"
	"github.com/mcoot/boardbank/internal/msgcat"
	"github.com/mcoot/boardbank/internal/services/fanout"
	"github.com/mcoot/boardbank/internal/services/ledger"
	"github.com/mcoot/boardbank/internal/services/reaper"
	"github.com/mcoot/boardbank/internal/services/room"
	"github.com/mcoot/boardbank/internal/services/session"
	"github.com/mcoot/boardbank/internal/storage"
	"github.com/mcoot/boardbank/internal/storage/memory"
	redisstorage "github.com/mcoot/boardbank/internal/storage/redis"
	"github.com/mcoot/boardbank/internal/web/ws"
)

// App contains all wired application components
type App struct {
	// Storage. Games always live in memory; sessions may live in Redis.
	Games    storage.GameStore
	Sessions storage.SessionStore

	// External dependencies
	Clock   clock.Clock
	Random  random.Random
	Catalog *msgcat.Catalog

	// Services
	SessionRegistry *session.Registry
	Fanout          *fanout.Fanout
	RoomManager     *room.Manager
	Processor       *ledger.Processor
	Reaper          *reaper.Reaper

	// Real-time transport. Hub is nil when a different notifier is wired in.
	Hub        *ws.Hub
	Dispatcher *ws.Dispatcher
	Realtime   *ws.Server

	logger  *slog.Logger
	closers []io.Closer
}

// dependencies are the swappable parts of an App
type dependencies struct {
	games    storage.GameStore
	sessions storage.SessionStore
	clock    clock.Clock
	random   random.Random
	notifier fanout.Notifier
	hub      *ws.Hub
	catalog  *msgcat.Catalog
	logger   *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	catalog, err := msgcat.New(cfg.Messages.Dir)
	if err != nil {
		return nil, fmt.Errorf("loading message catalog: %w", err)
	}

	games := memory.New()
	deps := dependencies{
		games:    games,
		sessions: games,
		clock:    clock.New(),
		random:   random.New(),
		catalog:  catalog,
		logger:   logger,
	}

	var closers []io.Closer
	switch cfg.Storage.Type {
	case "", config.StorageMemory:
	case config.StorageRedis:
		redisStore, err := redisstorage.New(redisstorage.Config{
			URL:          cfg.Storage.Redis.URL,
			PoolSize:     cfg.Storage.Redis.PoolSize,
			MinIdleConns: cfg.Storage.Redis.MinIdleConns,
			SessionTTL:   cfg.Storage.Redis.SessionTTL,
		})
		if err != nil {
			return nil, err
		}
		deps.sessions = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, fmt.Errorf("invalid storage type %q", cfg.Storage.Type)
	}

	deps.hub = ws.NewHub(logger)
	deps.notifier = deps.hub

	app := newWithDependencies(deps, cfg)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(deps dependencies, cfg config.Config) *App {
	logger := deps.logger
	out := fanout.New(deps.notifier)

	registry := session.NewRegistry(deps.sessions, deps.clock, deps.random, logger)
	rooms := room.NewManager(registry, deps.games, out, deps.clock, deps.random, logger, room.Config{
		DefaultSettings: cfg.Game.DefaultSettings(),
		IdleTimeout:     cfg.Game.IdleTimeout,
	})
	processor := ledger.NewProcessor(rooms, out, deps.clock, deps.random, logger, ledger.Config{
		PassGoWindow:        cfg.Game.PassGoWindow,
		PassGoLimit:         cfg.Game.PassGoLimit,
		TransactionLogLimit: cfg.Game.TransactionLogLimit,
	})
	dispatcher := ws.NewDispatcher(registry, rooms, processor, deps.notifier, deps.catalog, logger)

	app := &App{
		Games:           deps.games,
		Sessions:        deps.sessions,
		Clock:           deps.clock,
		Random:          deps.random,
		Catalog:         deps.catalog,
		SessionRegistry: registry,
		Fanout:          out,
		RoomManager:     rooms,
		Processor:       processor,
		Reaper:          reaper.New(rooms, deps.clock, cfg.Game.ReaperInterval, logger),
		Hub:             deps.hub,
		Dispatcher:      dispatcher,
		logger:          logger,
	}
	if deps.hub != nil {
		app.Realtime = ws.NewServer(deps.hub, dispatcher, deps.clock, deps.random, logger, ws.Config{
			SendBuffer:     cfg.WS.SendBuffer,
			PingInterval:   cfg.WS.PingInterval,
			WriteTimeout:   cfg.WS.WriteTimeout,
			ReadLimit:      cfg.WS.ReadLimit,
			AllowedOrigins: cfg.WS.AllowedOrigins,
		})
	}
	return app
}

// Router builds the HTTP handler serving the API and the websocket endpoint
func (a *App) Router() http.Handler {
	health := handler.HealthSources{
		Games: a.RoomManager.GameCount,
		Drops: a.Dispatcher.Drops,
	}
	cfg := api.RouterConfig{
		Logger:   a.logger,
		Sessions: a.SessionRegistry,
		Lobby:    a.RoomManager,
		Health:   health,
	}
	if a.Hub != nil {
		cfg.Health.Connections = a.Hub.ClientCount
		cfg.Realtime = a.Realtime
	}
	return api.NewRouter(cfg)
}

// Close disconnects every client and releases external resources
func (a *App) Close() error {
	if a.Hub != nil {
		a.Hub.Close()
	}
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
