package model

import "time"

// GameID is the short human-shareable code that identifies a game
type GameID string

// ConnectionID identifies a live transport connection. It changes on every
// reconnect; SessionID is what survives.
type ConnectionID string

// GameStatus represents the lifecycle phase of a game
type GameStatus string

const (
	GameStatusWaiting    GameStatus = "waiting"     // Accepting new players
	GameStatusInProgress GameStatus = "in-progress" // Transactions allowed
	GameStatusFinished   GameStatus = "finished"    // Statistics computed, read-only
)

// Next returns the status that follows s. Transitions are one-directional and
// never skip a state.
func (s GameStatus) Next() (GameStatus, bool) {
	switch s {
	case GameStatusWaiting:
		return GameStatusInProgress, true
	case GameStatusInProgress:
		return GameStatusFinished, true
	default:
		return s, false
	}
}

// Game is the authoritative in-memory state of one game room
type Game struct {
	ID                   GameID
	HostConnectionID     ConnectionID // Empty while no connected participant holds host
	OriginalHostUsername string
	Players              []*Participant // Insertion order; reconnects move to the end
	Status               GameStatus
	Settings             GameSettings
	CreatedAt            time.Time
	LastActivityAt       time.Time
	TransactionLog       []TransactionLogEntry
}

// Player returns the participant bound to the given connection, or nil
func (g *Game) Player(conn ConnectionID) *Participant {
	for _, p := range g.Players {
		if p.ConnectionID == conn {
			return p
		}
	}
	return nil
}

// PlayerBySession returns the participant owned by the given session, or nil
func (g *Game) PlayerBySession(id SessionID) *Participant {
	for _, p := range g.Players {
		if p.SessionID == id {
			return p
		}
	}
	return nil
}

// RemovePlayer drops the participant bound to the given connection
func (g *Game) RemovePlayer(conn ConnectionID) {
	for i, p := range g.Players {
		if p.ConnectionID == conn {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			return
		}
	}
}

// ConnectedPlayers returns the participants with a live connection, in order
func (g *Game) ConnectedPlayers() []*Participant {
	var connected []*Participant
	for _, p := range g.Players {
		if p.IsConnected {
			connected = append(connected, p)
		}
	}
	return connected
}

// Host returns the participant currently holding host authority, or nil
func (g *Game) Host() *Participant {
	if g.HostConnectionID == "" {
		return nil
	}
	return g.Player(g.HostConnectionID)
}

// IsHost reports whether the given connection holds host authority
func (g *Game) IsHost(conn ConnectionID) bool {
	return conn != "" && g.HostConnectionID == conn
}

// Touch records activity on the game
func (g *Game) Touch(now time.Time) {
	g.LastActivityAt = now
}

// IdleSince returns the last moment the game saw activity
func (g *Game) IdleSince() time.Time {
	if g.LastActivityAt.IsZero() {
		return g.CreatedAt
	}
	return g.LastActivityAt
}

// TotalBalance sums every participant's balance
func (g *Game) TotalBalance() int64 {
	var total int64
	for _, p := range g.Players {
		total += p.Balance
	}
	return total
}

// AppendTransaction adds an entry to the log, keeping only the most recent
// limit entries. A non-positive limit keeps everything.
func (g *Game) AppendTransaction(entry TransactionLogEntry, limit int) {
	g.TransactionLog = append(g.TransactionLog, entry)
	if limit > 0 && len(g.TransactionLog) > limit {
		trimmed := make([]TransactionLogEntry, limit)
		copy(trimmed, g.TransactionLog[len(g.TransactionLog)-limit:])
		g.TransactionLog = trimmed
	}
}
