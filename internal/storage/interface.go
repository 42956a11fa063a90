package storage

import (
	"context"

	"github.com/mcoot/boardbank/internal/model"
)

// SessionStore persists player sessions
type SessionStore interface {
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
}

// GameStore holds the authoritative collection of games. Callers must hold the
// game's lock while reading or mutating a returned game.
type GameStore interface {
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	GameExists(ctx context.Context, id model.GameID) (bool, error)

	// ListGames returns every game ordered by creation time
	ListGames(ctx context.Context) ([]*model.Game, error)
}

// Storage defines the interface for data persistence
type Storage interface {
	SessionStore
	GameStore
}
