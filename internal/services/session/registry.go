package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/boardbank/internal/dependencies/clock"
	"github.com/mcoot/boardbank/internal/dependencies/random"
	"github.com/mcoot/boardbank/internal/model"
	"github.com/mcoot/boardbank/internal/storage"
)

// Registry issues and validates player sessions
type Registry struct {
	store  storage.SessionStore
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// NewRegistry creates a new session Registry
func NewRegistry(store storage.SessionStore, clock clock.Clock, random random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		store:  store,
		clock:  clock,
		random: random,
		logger: logger.With(slog.String("component", "session")),
	}
}

// Login creates a new session for the given display name. Usernames are not
// unique; two sessions may share one.
func (r *Registry) Login(ctx context.Context, username string) (*model.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, model.ErrInvalidUsername
	}

	session := &model.Session{
		ID:        model.SessionID(r.random.UUID()),
		Username:  username,
		CreatedAt: r.clock.Now(),
	}
	if err := r.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	r.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.String("username", session.Username),
	)
	return session, nil
}

// Validate looks up a session. Unknown or empty ids yield ErrSessionInvalid.
func (r *Registry) Validate(ctx context.Context, id model.SessionID) (*model.Session, error) {
	if id == "" {
		return nil, model.ErrSessionInvalid
	}
	session, err := r.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, model.ErrSessionInvalid
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return session, nil
}
