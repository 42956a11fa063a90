package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string        `env:"SERVER" envDefault:"http://localhost:8080"`
	StateFile string        `env:"STATE_FILE"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"5s"`
	Output    string        `env:"OUTPUT" envDefault:"text"`
	Verbose   bool          `env:"VERBOSE"`
}

// DefaultConfig returns a Config populated from BOARDBANK_* environment
// variables, falling back to defaults
func DefaultConfig() *Config {
	c := &Config{}
	if err := env.ParseWithOptions(c, env.Options{Prefix: "BOARDBANK_"}); err != nil {
		// A malformed variable leaves its field at the zero value
		fmt.Fprintf(os.Stderr, "Warning: %s\n", err)
	}
	if c.StateFile == "" {
		c.StateFile = defaultStateFile()
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.ServerURL == "" {
		c.ServerURL = "http://localhost:8080"
	}
	return c
}

// State is what the CLI remembers between invocations: the session it logged
// in with and the game it last created or joined
type State struct {
	SessionID string `json:"sessionId,omitempty"`
	Username  string `json:"username,omitempty"`
	GameID    string `json:"gameId,omitempty"`
}

var (
	errNotLoggedIn = errors.New("not logged in; run `bankctl login <username>` first")
	errNoGame      = errors.New("not in a game; run `bankctl create` or `bankctl join <gameId>` first")
)

// LoadState reads the state file. A missing file is an empty state.
func (c *Config) LoadState() (State, error) {
	var st State

	data, err := os.ReadFile(c.StateFile)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, err
	}

	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("reading state file %s: %w", c.StateFile, err)
	}
	return st, nil
}

// SaveState writes the state file, creating its directory when needed
func (c *Config) SaveState(st State) error {
	dir := filepath.Dir(c.StateFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.StateFile, data, 0600)
}

// RequireSession loads the state and fails when there is no stored session
func (c *Config) RequireSession() (State, error) {
	st, err := c.LoadState()
	if err != nil {
		return st, err
	}
	if st.SessionID == "" {
		return st, errNotLoggedIn
	}
	return st, nil
}

// RequireGame loads the state and fails unless both a session and a game are
// stored
func (c *Config) RequireGame() (State, error) {
	st, err := c.RequireSession()
	if err != nil {
		return st, err
	}
	if st.GameID == "" {
		return st, errNoGame
	}
	return st, nil
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".boardbank/state.json"
	}
	return filepath.Join(home, ".boardbank", "state.json")
}
