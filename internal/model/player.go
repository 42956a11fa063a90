package model

import (
	"encoding/json"
	"time"
)

// SessionID is the opaque, server-issued token that identifies a player
// across connections and games
type SessionID string

// Session represents a logged-in player's identity
type Session struct {
	ID        SessionID `json:"sessionId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Participant is a player's membership record within one game
type Participant struct {
	ConnectionID  ConnectionID // Current transport identity, replaced on reconnect
	SessionID     SessionID    // Stable across reconnects
	Username      string
	Balance       int64 // Whole currency units, never negative
	IsConnected   bool
	PassGoHistory []time.Time // Sliding window, pruned on every pass-go
}

// PlayerName is a participant's username as it appears in the transaction log
// and statistics. The zero value means "nobody" (the bank, or no candidate)
// and encodes as JSON null.
type PlayerName string

// MarshalJSON encodes the empty name as null
func (n PlayerName) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(n))
}
