package response

import (
	"time"

	"github.com/mcoot/boardbank/internal/model"
)

// Session represents an issued session in API responses. PlayerID repeats the
// session id under its older name.
type Session struct {
	SessionID string    `json:"sessionId"`
	PlayerID  string    `json:"playerId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionFromModel converts a model.Session
func SessionFromModel(s *model.Session) Session {
	return Session{
		SessionID: string(s.ID),
		PlayerID:  string(s.ID),
		Username:  s.Username,
		CreatedAt: s.CreatedAt,
	}
}

// LobbyGames lists the games waiting for players
type LobbyGames struct {
	Games []model.LobbyGame `json:"games"`
}

// Health is the health check response
type Health struct {
	Status          string `json:"status"`
	Games           int    `json:"games"`
	Connections     int    `json:"connections"`
	DroppedRequests int64  `json:"droppedRequests"`
}
