package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/boardbank/internal/model"
	"github.com/mcoot/boardbank/internal/storage"
)

// Session hash fields
const (
	fieldUsername  = "username"
	fieldCreatedAt = "created_at"
)

// Storage is a Redis-backed session store. Each session is a hash so it can
// be inspected from redis-cli. Games are live, lock-guarded state and stay in
// process memory.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New connects to Redis and verifies the connection
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.SessionStore = (*Storage)(nil)

// SaveSession writes the session hash, replacing any previous one
func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	key := sessionKey(session.ID)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldUsername, session.Username,
			fieldCreatedAt, session.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if s.cfg.SessionTTL > 0 {
			pipe.Expire(ctx, key, s.cfg.SessionTTL)
		}
		return nil
	})
	return err
}

// GetSession reads a session. With a TTL configured, every read pushes the
// expiry back so active sessions stay alive.
func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	key := sessionKey(id)

	var fields *redis.MapStringStringCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		fields = pipe.HGetAll(ctx, key)
		if s.cfg.SessionTTL > 0 {
			pipe.Expire(ctx, key, s.cfg.SessionTTL)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	values := fields.Val()
	if len(values) == 0 {
		return nil, model.ErrSessionNotFound
	}

	createdAt, err := time.Parse(time.RFC3339Nano, values[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("session %s has a malformed %s: %w", id, fieldCreatedAt, err)
	}

	return &model.Session{
		ID:        id,
		Username:  values[fieldUsername],
		CreatedAt: createdAt,
	}, nil
}
