package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/mcoot/boardbank/internal/model"
	"github.com/mcoot/boardbank/internal/storage"
)

// Storage keeps sessions and games in process memory. Sessions and games are
// guarded separately so session lookups never wait behind lobby listing.
type Storage struct {
	sessionsMu sync.RWMutex
	sessions   map[model.SessionID]model.Session

	gamesMu sync.RWMutex
	games   map[model.GameID]*model.Game
}

// New creates an empty store
func New() *Storage {
	return &Storage{
		sessions: make(map[model.SessionID]model.Session),
		games:    make(map[model.GameID]*model.Game),
	}
}

var _ storage.Storage = (*Storage)(nil)

// SaveSession stores a copy of the session
func (s *Storage) SaveSession(_ context.Context, session *model.Session) error {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

// GetSession returns a copy, so callers cannot mutate stored sessions
func (s *Storage) GetSession(_ context.Context, id model.SessionID) (*model.Session, error) {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return &session, nil
}

// Games are stored by pointer: the room manager mutates them in place under
// each game's own lock.

func (s *Storage) SaveGame(_ context.Context, game *model.Game) error {
	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	s.games[game.ID] = game
	return nil
}

func (s *Storage) GetGame(_ context.Context, id model.GameID) (*model.Game, error) {
	s.gamesMu.RLock()
	defer s.gamesMu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

func (s *Storage) DeleteGame(_ context.Context, id model.GameID) error {
	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	delete(s.games, id)
	return nil
}

func (s *Storage) GameExists(_ context.Context, id model.GameID) (bool, error) {
	s.gamesMu.RLock()
	defer s.gamesMu.RUnlock()
	_, ok := s.games[id]
	return ok, nil
}

func (s *Storage) ListGames(_ context.Context) ([]*model.Game, error) {
	s.gamesMu.RLock()
	games := slices.Collect(maps.Values(s.games))
	s.gamesMu.RUnlock()

	slices.SortFunc(games, func(a, b *model.Game) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return games, nil
}
