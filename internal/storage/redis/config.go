package redis

import "time"

// Config holds Redis connection and session expiry settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	PoolSize       int
	MinIdleConns   int
	ConnectTimeout time.Duration

	// SessionTTL expires sessions that go unused for the given duration;
	// zero keeps them for the lifetime of the Redis data
	SessionTTL time.Duration
}

// DefaultConfig returns defaults for a local Redis
func DefaultConfig() Config {
	return Config{
		URL:            "redis://localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		ConnectTimeout: 5 * time.Second,
	}
}
