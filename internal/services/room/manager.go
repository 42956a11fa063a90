package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/boardbank/internal/dependencies/clock"
	"github.com/mcoot/boardbank/internal/dependencies/random"
	"github.com/mcoot/boardbank/internal/model"
	"github.com/mcoot/boardbank/internal/services/fanout"
	"github.com/mcoot/boardbank/internal/services/projection"
	"github.com/mcoot/boardbank/internal/services/stats"
	"github.com/mcoot/boardbank/internal/storage"
)

const (
	// GameCodePrefix starts every game code
	GameCodePrefix = "G"
	// GameCodeLength is the number of random characters after the prefix
	GameCodeLength = 8
	// GameCodeAlphabet is the characters used in game codes
	GameCodeAlphabet = "0123456789ABCDEF"

	maxCodeAttempts = 100
)

// SessionValidator resolves session ids to sessions
type SessionValidator interface {
	Validate(ctx context.Context, id model.SessionID) (*model.Session, error)
}

// Config holds configuration for the room manager
type Config struct {
	DefaultSettings model.GameSettings
	IdleTimeout     time.Duration
}

// DefaultConfig returns default room configuration
func DefaultConfig() Config {
	return Config{
		DefaultSettings: model.DefaultGameSettings(),
		IdleTimeout:     24 * time.Hour,
	}
}

// Manager owns the collection of games, their membership and lifecycle.
// Every game has its own lock; all reads and writes of a game happen under it.
// The lobby lock may be held while taking a game lock, never the reverse.
type Manager struct {
	sessions SessionValidator
	games    storage.GameStore
	fanout   *fanout.Fanout
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
	cfg      Config

	mu       sync.Mutex
	locks    map[model.GameID]*sync.Mutex
	bindings map[model.ConnectionID]model.GameID

	lobbyMu sync.Mutex
}

// NewManager creates a new room Manager
func NewManager(
	sessions SessionValidator,
	games storage.GameStore,
	fanout *fanout.Fanout,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	cfg Config,
) *Manager {
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}
	if cfg.DefaultSettings == (model.GameSettings{}) {
		cfg.DefaultSettings = DefaultConfig().DefaultSettings
	}
	return &Manager{
		sessions: sessions,
		games:    games,
		fanout:   fanout,
		clock:    clock,
		random:   random,
		logger:   logger.With(slog.String("component", "room")),
		cfg:      cfg,
		locks:    make(map[model.GameID]*sync.Mutex),
		bindings: make(map[model.ConnectionID]model.GameID),
	}
}

// CreateGame creates a waiting game hosted by the session on conn
func (m *Manager) CreateGame(ctx context.Context, conn model.ConnectionID, sessionID model.SessionID, raw model.RawSettings) (model.GameID, error) {
	session, err := m.sessions.Validate(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if err := m.leaveCurrent(ctx, conn, ""); err != nil {
		return "", err
	}

	id, lock, err := m.reserveCode(ctx)
	if err != nil {
		return "", err
	}

	now := m.clock.Now()
	game := &model.Game{
		ID:                   id,
		HostConnectionID:     conn,
		OriginalHostUsername: session.Username,
		Status:               model.GameStatusWaiting,
		Settings:             model.NormalizeSettings(raw, m.cfg.DefaultSettings),
		CreatedAt:            now,
		LastActivityAt:       now,
		TransactionLog:       []model.TransactionLogEntry{},
	}
	game.Players = []*model.Participant{{
		ConnectionID: conn,
		SessionID:    session.ID,
		Username:     session.Username,
		Balance:      game.Settings.StartingBalance,
		IsConnected:  true,
	}}

	lock.Lock()
	if err := m.games.SaveGame(ctx, game); err != nil {
		lock.Unlock()
		m.dropLock(id)
		return "", fmt.Errorf("saving game: %w", err)
	}
	m.bind(conn, id)
	m.fanout.Notifier().Subscribe(conn, fanout.GameGroup(id))
	m.fanout.Joined(conn, model.EventCreateGameSuccess, game)
	m.fanout.UpdatePlayers(game)
	lock.Unlock()

	m.logger.Info("game created",
		slog.String("game_id", string(id)),
		slog.String("connection_id", string(conn)),
		slog.String("session_id", string(session.ID)),
	)

	m.broadcastLobby(ctx)
	return id, nil
}

// JoinGame admits the session on conn to a game. A session that already has
// a participant takes it over, whatever the game's status; anyone else may
// only join while the game is waiting.
func (m *Manager) JoinGame(ctx context.Context, conn model.ConnectionID, sessionID model.SessionID, id model.GameID) error {
	session, err := m.sessions.Validate(ctx, sessionID)
	if err != nil {
		return err
	}
	previous, hadPrevious := m.BoundGame(conn)

	lock, err := m.lockFor(id)
	if err != nil {
		return err
	}
	lock.Lock()
	game, err := m.games.GetGame(ctx, id)
	if err != nil {
		lock.Unlock()
		return err
	}

	existing := game.PlayerBySession(session.ID)
	if existing == nil && game.Status != model.GameStatusWaiting {
		lock.Unlock()
		return model.ErrGameNotJoinable
	}
	game.Touch(m.clock.Now())
	m.displace(game, conn, session.ID)

	group := fanout.GameGroup(id)
	if existing != nil {
		old := existing.ConnectionID
		if old != conn {
			m.fanout.Notifier().Unsubscribe(old, group)
			m.unbindIf(old, id)
			m.fanout.Notifier().Kick(old)
		}
		game.RemovePlayer(old)
		game.Players = append(game.Players, &model.Participant{
			ConnectionID:  conn,
			SessionID:     session.ID,
			Username:      session.Username,
			Balance:       existing.Balance,
			IsConnected:   true,
			PassGoHistory: existing.PassGoHistory,
		})
		if session.Username == game.OriginalHostUsername || game.HostConnectionID == old || game.HostConnectionID == "" {
			game.HostConnectionID = conn
		}

		m.logger.Info("player rejoined game",
			slog.String("game_id", string(id)),
			slog.String("connection_id", string(conn)),
			slog.String("previous_connection_id", string(old)),
		)
	} else {
		game.Players = append(game.Players, &model.Participant{
			ConnectionID: conn,
			SessionID:    session.ID,
			Username:     session.Username,
			Balance:      game.Settings.StartingBalance,
			IsConnected:  true,
		})
		if game.HostConnectionID == "" {
			game.HostConnectionID = conn
		}

		m.logger.Info("player joined game",
			slog.String("game_id", string(id)),
			slog.String("connection_id", string(conn)),
			slog.String("session_id", string(session.ID)),
		)
	}

	m.bind(conn, id)
	m.fanout.Notifier().Subscribe(conn, group)
	m.fanout.Joined(conn, model.EventJoinGameSuccess, game)
	m.fanout.UpdatePlayers(game)
	saveErr := m.games.SaveGame(ctx, game)
	waiting := game.Status == model.GameStatusWaiting
	lock.Unlock()

	if hadPrevious && previous != id {
		if err := m.detachFrom(ctx, conn, previous, "switched game"); err != nil {
			return err
		}
	}
	if saveErr != nil {
		return fmt.Errorf("saving game: %w", saveErr)
	}
	if waiting {
		m.broadcastLobby(ctx)
	}
	return nil
}

// displace frees conn in game when it belongs to another session's
// participant. That participant is disconnected and rekeyed to a connection
// id nothing will ever use, so it can still be reclaimed by its session.
func (m *Manager) displace(game *model.Game, conn model.ConnectionID, sessionID model.SessionID) {
	p := game.Player(conn)
	if p == nil || p.SessionID == sessionID {
		return
	}
	p.IsConnected = false
	p.ConnectionID = model.ConnectionID("released-" + m.random.UUID())
	migrateHost(game, conn)

	m.logger.Info("participant released connection",
		slog.String("game_id", string(game.ID)),
		slog.String("connection_id", string(conn)),
		slog.String("session_id", string(p.SessionID)),
	)
}

// LeaveGame marks the participant on conn as disconnected. The participant
// and its balance stay in the game so the session can rejoin later.
func (m *Manager) LeaveGame(ctx context.Context, conn model.ConnectionID) error {
	return m.detach(ctx, conn, "left")
}

// Disconnect handles a dropped transport. It has the same effect as leaving.
func (m *Manager) Disconnect(ctx context.Context, conn model.ConnectionID) error {
	m.fanout.Notifier().Unsubscribe(conn, fanout.LobbyGroup)
	return m.detach(ctx, conn, "disconnected")
}

// UpdateSettings merges a settings patch. Host only, while waiting.
func (m *Manager) UpdateSettings(ctx context.Context, conn model.ConnectionID, id model.GameID, patch model.RawSettings) error {
	err := m.WithGame(ctx, conn, id, func(game *model.Game) error {
		if err := m.requireHost(game, conn, model.GameStatusWaiting); err != nil {
			return err
		}
		game.Touch(m.clock.Now())
		game.Settings = model.NormalizeSettings(game.Settings.Raw().Merge(patch), m.cfg.DefaultSettings)
		m.fanout.UpdatePlayers(game)
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("game settings updated", slog.String("game_id", string(id)))
	m.broadcastLobby(ctx)
	return nil
}

// StartGame moves a waiting game to in-progress. Host only.
func (m *Manager) StartGame(ctx context.Context, conn model.ConnectionID, id model.GameID) error {
	err := m.WithGame(ctx, conn, id, func(game *model.Game) error {
		if err := m.requireHost(game, conn, model.GameStatusWaiting); err != nil {
			return err
		}
		game.Touch(m.clock.Now())
		game.Status, _ = game.Status.Next()
		m.fanout.GameStarted(game)
		m.fanout.UpdatePlayers(game)
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("game started", slog.String("game_id", string(id)))
	m.broadcastLobby(ctx)
	return nil
}

// FinishGame computes the final statistics and moves an in-progress game to
// finished. Host only. The statistics travel with the status change.
func (m *Manager) FinishGame(ctx context.Context, conn model.ConnectionID, id model.GameID) error {
	err := m.WithGame(ctx, conn, id, func(game *model.Game) error {
		if err := m.requireHost(game, conn, model.GameStatusInProgress); err != nil {
			return err
		}
		game.Touch(m.clock.Now())
		summary := stats.Compute(game)
		game.Status, _ = game.Status.Next()
		m.fanout.GameFinished(game, summary)
		m.fanout.UpdatePlayers(game)
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("game finished", slog.String("game_id", string(id)))
	return nil
}

// WithGame runs fn under the lock of the game conn is bound to. The request's
// game id must match that binding; a mismatch is ignored. The game is saved
// after fn returns, even on error, so activity recorded before a rejection
// is kept.
func (m *Manager) WithGame(ctx context.Context, conn model.ConnectionID, id model.GameID, fn func(game *model.Game) error) error {
	bound, ok := m.BoundGame(conn)
	if !ok || bound != id {
		return model.Ignored("game id does not match connection")
	}

	lock, err := m.lockFor(id)
	if err != nil {
		return err
	}
	lock.Lock()
	defer lock.Unlock()

	game, err := m.games.GetGame(ctx, id)
	if err != nil {
		return err
	}

	fnErr := fn(game)
	if err := m.games.SaveGame(ctx, game); err != nil {
		return fmt.Errorf("saving game: %w", err)
	}
	return fnErr
}

// BoundGame returns the game conn currently belongs to
func (m *Manager) BoundGame(conn model.ConnectionID) (model.GameID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.bindings[conn]
	return id, ok
}

// JoinLobby subscribes conn to lobby updates and sends the current list
func (m *Manager) JoinLobby(ctx context.Context, conn model.ConnectionID) error {
	m.lobbyMu.Lock()
	defer m.lobbyMu.Unlock()

	games, err := m.lobbyGamesLocked(ctx)
	if err != nil {
		return err
	}
	m.fanout.Notifier().Subscribe(conn, fanout.LobbyGroup)
	m.fanout.LobbyTo(conn, games)
	return nil
}

// LeaveLobby stops lobby updates for conn
func (m *Manager) LeaveLobby(conn model.ConnectionID) {
	m.fanout.Notifier().Unsubscribe(conn, fanout.LobbyGroup)
}

// SendLobbyGames sends the current lobby list to conn without subscribing it
func (m *Manager) SendLobbyGames(ctx context.Context, conn model.ConnectionID) error {
	m.lobbyMu.Lock()
	defer m.lobbyMu.Unlock()

	games, err := m.lobbyGamesLocked(ctx)
	if err != nil {
		return err
	}
	m.fanout.LobbyTo(conn, games)
	return nil
}

// LobbyGames lists every waiting game
func (m *Manager) LobbyGames(ctx context.Context) ([]model.LobbyGame, error) {
	m.lobbyMu.Lock()
	defer m.lobbyMu.Unlock()
	return m.lobbyGamesLocked(ctx)
}

// GameCount returns the number of live games
func (m *Manager) GameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// EvictIdle removes every game idle for longer than the configured timeout.
// Remaining connections are not notified. It returns how many games were
// evicted.
func (m *Manager) EvictIdle(ctx context.Context) (int, error) {
	games, err := m.games.ListGames(ctx)
	if err != nil {
		return 0, err
	}

	evicted := 0
	lobbyChanged := false
	for _, candidate := range games {
		lock, err := m.lockFor(candidate.ID)
		if err != nil {
			continue
		}

		lock.Lock()
		game, err := m.games.GetGame(ctx, candidate.ID)
		if err != nil || m.clock.Since(game.IdleSince()) <= m.cfg.IdleTimeout {
			lock.Unlock()
			continue
		}
		if err := m.games.DeleteGame(ctx, game.ID); err != nil {
			lock.Unlock()
			return evicted, fmt.Errorf("deleting game %s: %w", game.ID, err)
		}
		group := fanout.GameGroup(game.ID)
		for _, conn := range m.fanout.Notifier().Members(group) {
			m.fanout.Notifier().Unsubscribe(conn, group)
		}
		m.forgetGame(game.ID)
		if game.Status == model.GameStatusWaiting {
			lobbyChanged = true
		}
		lock.Unlock()

		evicted++
		m.logger.Info("idle game evicted",
			slog.String("game_id", string(game.ID)),
			slog.Time("last_activity", game.IdleSince()),
			slog.Int("player_count", len(game.Players)),
		)
	}

	if lobbyChanged {
		m.broadcastLobby(ctx)
	}
	return evicted, nil
}

// detach disconnects conn from its game and migrates host authority if needed
func (m *Manager) detach(ctx context.Context, conn model.ConnectionID, reason string) error {
	id, ok := m.BoundGame(conn)
	if !ok {
		return nil
	}
	return m.detachFrom(ctx, conn, id, reason)
}

// detachFrom disconnects conn's participant in game id. The binding is only
// cleared while it still points at id.
func (m *Manager) detachFrom(ctx context.Context, conn model.ConnectionID, id model.GameID, reason string) error {
	lock, err := m.lockFor(id)
	if err != nil {
		m.unbindIf(conn, id)
		return nil
	}
	lock.Lock()
	game, err := m.games.GetGame(ctx, id)
	if err != nil {
		lock.Unlock()
		m.unbindIf(conn, id)
		if errors.Is(err, model.ErrGameNotFound) {
			return nil
		}
		return err
	}

	game.Touch(m.clock.Now())
	if p := game.Player(conn); p != nil {
		p.IsConnected = false
	}
	m.fanout.Notifier().Unsubscribe(conn, fanout.GameGroup(id))
	m.unbindIf(conn, id)
	previousHost := game.HostConnectionID
	migrateHost(game, conn)
	m.fanout.UpdatePlayers(game)
	saveErr := m.games.SaveGame(ctx, game)
	waiting := game.Status == model.GameStatusWaiting
	newHost := game.HostConnectionID
	lock.Unlock()

	m.logger.Info("player left game",
		slog.String("game_id", string(id)),
		slog.String("connection_id", string(conn)),
		slog.String("reason", reason),
	)
	if previousHost != newHost {
		m.logger.Info("host migrated",
			slog.String("game_id", string(id)),
			slog.String("from", string(previousHost)),
			slog.String("to", string(newHost)),
		)
	}

	if saveErr != nil {
		return fmt.Errorf("saving game: %w", saveErr)
	}
	if waiting {
		m.broadcastLobby(ctx)
	}
	return nil
}

// migrateHost reassigns host authority away from a departing connection: to
// the original host if connected, else to the first connected participant,
// else to nobody
func migrateHost(game *model.Game, departing model.ConnectionID) {
	if game.HostConnectionID != departing {
		return
	}
	connected := game.ConnectedPlayers()
	if len(connected) == 0 {
		game.HostConnectionID = ""
		return
	}
	for _, p := range connected {
		if p.Username == game.OriginalHostUsername {
			game.HostConnectionID = p.ConnectionID
			return
		}
	}
	game.HostConnectionID = connected[0].ConnectionID
}

func (m *Manager) requireHost(game *model.Game, conn model.ConnectionID, status model.GameStatus) error {
	if !game.IsHost(conn) {
		return model.ErrNotHost
	}
	if game.Status != status {
		return model.ErrInvalidGameState
	}
	return nil
}

// leaveCurrent detaches conn from any game other than keep
func (m *Manager) leaveCurrent(ctx context.Context, conn model.ConnectionID, keep model.GameID) error {
	current, ok := m.BoundGame(conn)
	if !ok || current == keep {
		return nil
	}
	return m.detach(ctx, conn, "switched game")
}

// reserveCode picks an unused game code and registers its lock
func (m *Manager) reserveCode(ctx context.Context) (model.GameID, *sync.Mutex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		id := model.GameID(GameCodePrefix + m.random.String(GameCodeLength, GameCodeAlphabet))
		if _, taken := m.locks[id]; taken {
			continue
		}
		exists, err := m.games.GameExists(ctx, id)
		if err != nil {
			return "", nil, err
		}
		if exists {
			continue
		}
		lock := &sync.Mutex{}
		m.locks[id] = lock
		return id, lock, nil
	}
	return "", nil, errors.New("could not generate a unique game code")
}

func (m *Manager) lockFor(id model.GameID) (*sync.Mutex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return lock, nil
}

func (m *Manager) dropLock(id model.GameID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, id)
}

// forgetGame drops the lock entry and every connection binding for a game
func (m *Manager) forgetGame(id model.GameID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, id)
	for conn, bound := range m.bindings {
		if bound == id {
			delete(m.bindings, conn)
		}
	}
}

func (m *Manager) bind(conn model.ConnectionID, id model.GameID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[conn] = id
}

func (m *Manager) unbindIf(conn model.ConnectionID, id model.GameID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bindings[conn] == id {
		delete(m.bindings, conn)
	}
}

func (m *Manager) broadcastLobby(ctx context.Context) {
	m.lobbyMu.Lock()
	defer m.lobbyMu.Unlock()

	games, err := m.lobbyGamesLocked(ctx)
	if err != nil {
		m.logger.Error("failed to list lobby games", slog.String("error", err.Error()))
		return
	}
	m.fanout.Lobby(games)
}

func (m *Manager) lobbyGamesLocked(ctx context.Context) ([]model.LobbyGame, error) {
	games, err := m.games.ListGames(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]model.LobbyGame, 0, len(games))
	for _, candidate := range games {
		lock, err := m.lockFor(candidate.ID)
		if err != nil {
			continue
		}
		lock.Lock()
		if candidate.Status == model.GameStatusWaiting {
			list = append(list, projection.LobbyEntry(candidate))
		}
		lock.Unlock()
	}
	return list, nil
}
