// Package config loads server configuration from an optional YAML file and
// BOARDBANK_* environment variables. Environment values win.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/boardbank/internal/model"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "BOARDBANK_"

// FileEnvVar names the environment variable holding the config file path
const FileEnvVar = EnvPrefix + "CONFIG_FILE"

// Storage backends for sessions
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the complete server configuration
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" envPrefix:"HTTP_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
	Storage  StorageConfig  `yaml:"storage" envPrefix:"STORAGE_"`
	Game     GameConfig     `yaml:"game" envPrefix:"GAME_"`
	WS       WSConfig       `yaml:"ws" envPrefix:"WS_"`
	Messages MessagesConfig `yaml:"messages" envPrefix:"MESSAGES_"`
}

// HTTPConfig configures the HTTP listener
type HTTPConfig struct {
	Host              string        `yaml:"host" env:"HOST"`
	Port              int           `yaml:"port" env:"PORT"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// StorageConfig selects and configures session storage. Games always live in
// memory.
type StorageConfig struct {
	Type  string      `yaml:"type" env:"TYPE"`
	Redis RedisConfig `yaml:"redis" envPrefix:"REDIS_"`
}

// RedisConfig configures the Redis session store
type RedisConfig struct {
	URL          string        `yaml:"url" env:"URL"`
	PoolSize     int           `yaml:"pool_size" env:"POOL_SIZE"`
	MinIdleConns int           `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
	SessionTTL   time.Duration `yaml:"session_ttl" env:"SESSION_TTL"` // 0 keeps sessions forever
}

// GameConfig holds money rules and lifecycle limits
type GameConfig struct {
	StartingBalance      int64         `yaml:"starting_balance" env:"STARTING_BALANCE"`
	PassGoAmount         int64         `yaml:"pass_go_amount" env:"PASS_GO_AMOUNT"`
	BankerlessWithdrawal bool          `yaml:"bankerless_withdrawal" env:"BANKERLESS_WITHDRAWAL"`
	AnonymousBalances    bool          `yaml:"anonymous_balances" env:"ANONYMOUS_BALANCES"`
	PassGoWindow         time.Duration `yaml:"pass_go_window" env:"PASS_GO_WINDOW"`
	PassGoLimit          int           `yaml:"pass_go_limit" env:"PASS_GO_LIMIT"`
	TransactionLogLimit  int           `yaml:"transaction_log_limit" env:"TRANSACTION_LOG_LIMIT"`
	IdleTimeout          time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ReaperInterval       time.Duration `yaml:"reaper_interval" env:"REAPER_INTERVAL"`
}

// WSConfig configures the websocket transport
type WSConfig struct {
	SendBuffer     int           `yaml:"send_buffer" env:"SEND_BUFFER"`
	PingInterval   time.Duration `yaml:"ping_interval" env:"PING_INTERVAL"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ReadLimit      int64         `yaml:"read_limit" env:"READ_LIMIT"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

// MessagesConfig points at optional message catalog overrides
type MessagesConfig struct {
	Dir string `yaml:"dir" env:"DIR"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	settings := model.DefaultGameSettings()
	return Config{
		HTTP: HTTPConfig{
			Port:              8080,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Storage: StorageConfig{
			Type: StorageMemory,
			Redis: RedisConfig{
				PoolSize:     10,
				MinIdleConns: 2,
			},
		},
		Game: GameConfig{
			StartingBalance:      settings.StartingBalance,
			PassGoAmount:         settings.PassGoAmount,
			BankerlessWithdrawal: settings.BankerlessWithdrawal,
			AnonymousBalances:    settings.AnonymousBalances,
			PassGoWindow:         90 * time.Second,
			PassGoLimit:          2,
			TransactionLogLimit:  model.DefaultTransactionLogLimit,
			IdleTimeout:          24 * time.Hour,
			ReaperInterval:       time.Hour,
		},
		WS: WSConfig{
			SendBuffer:   256,
			PingInterval: 30 * time.Second,
			WriteTimeout: 10 * time.Second,
			ReadLimit:    64 << 10,
		},
	}
}

// Load reads the file named by BOARDBANK_CONFIG_FILE, if any, then applies
// the process environment
func Load() (Config, error) {
	return LoadFrom(os.Getenv(FileEnvVar), nil)
}

// LoadFrom reads the YAML file at path, if set, then applies environment
// variables. A nil environ means the process environment.
func LoadFrom(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	var errs []error

	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http port out of range: %d", c.HTTP.Port))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if strings.TrimSpace(c.Storage.Redis.URL) == "" {
			errs = append(errs, errors.New("redis url is required when storage type is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid storage type %q: must be %q or %q", c.Storage.Type, StorageMemory, StorageRedis))
	}

	if c.Game.StartingBalance <= 0 || c.Game.StartingBalance > model.MaxSafeAmount {
		errs = append(errs, fmt.Errorf("starting balance out of range: %d", c.Game.StartingBalance))
	}
	if c.Game.PassGoAmount <= 0 || c.Game.PassGoAmount > model.MaxSafeAmount {
		errs = append(errs, fmt.Errorf("pass go amount out of range: %d", c.Game.PassGoAmount))
	}
	if c.Game.PassGoWindow <= 0 || c.Game.PassGoLimit <= 0 {
		errs = append(errs, errors.New("pass go window and limit must be positive"))
	}
	if c.Game.TransactionLogLimit <= 0 {
		errs = append(errs, errors.New("transaction log limit must be positive"))
	}
	if c.Game.IdleTimeout <= 0 || c.Game.ReaperInterval <= 0 {
		errs = append(errs, errors.New("idle timeout and reaper interval must be positive"))
	}

	return errors.Join(errs...)
}

// SlogLevel parses the configured log level
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

// DefaultSettings returns the game settings used when a client omits them
func (g GameConfig) DefaultSettings() model.GameSettings {
	return model.GameSettings{
		StartingBalance:      g.StartingBalance,
		PassGoAmount:         g.PassGoAmount,
		BankerlessWithdrawal: g.BankerlessWithdrawal,
		AnonymousBalances:    g.AnonymousBalances,
	}
}
