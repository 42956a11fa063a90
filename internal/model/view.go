package model

import "time"

// PlayerView is one participant as seen by a particular observer. Exactly one
// of Balance and BalanceBucket is set.
type PlayerView struct {
	ID            ConnectionID `json:"id"`
	Username      string       `json:"username"`
	IsConnected   bool         `json:"isConnected"`
	Balance       *int64       `json:"balance,omitempty"`
	BalanceBucket string       `json:"balanceBucket,omitempty"`
}

// GameView is a personalized snapshot of a whole game
type GameView struct {
	ID                   GameID                `json:"id"`
	HostID               ConnectionID          `json:"hostId"`
	OriginalHostUsername string                `json:"originalHostUsername"`
	Status               GameStatus            `json:"status"`
	Settings             GameSettings          `json:"settings"`
	Players              []PlayerView          `json:"players"`
	TransactionLogs      []TransactionLogEntry `json:"transactionLogs"`
	CreatedAt            time.Time             `json:"createdAt"`
	LastActivityAt       time.Time             `json:"lastActivityAt"`
}

// NoHostUsername is shown in the lobby for a game nobody currently hosts
const NoHostUsername = "—"

// LobbyGame is one joinable game as listed in the lobby
type LobbyGame struct {
	ID           GameID       `json:"id"`
	HostID       ConnectionID `json:"hostId"`
	HostUsername string       `json:"hostUsername"`
	PlayerCount  int          `json:"playerCount"`
	Status       GameStatus   `json:"status"`
}
