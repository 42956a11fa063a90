package model

// EventType is the name of a message on the real-time channel
type EventType string

// Client to server events
const (
	EventLogin              EventType = "login"
	EventCreateGame         EventType = "createGame"
	EventJoinGame           EventType = "joinGame"
	EventJoinLobby          EventType = "joinLobby"
	EventLeaveLobby         EventType = "leaveLobby"
	EventLeaveGame          EventType = "leaveGame"
	EventGetLobbyGames      EventType = "getLobbyGames"
	EventUpdateGameSettings EventType = "updateGameSettings"
	EventStartGame          EventType = "startGame"
	EventFinishGame         EventType = "finishGame"
	EventTransferToPlayer   EventType = "transferToPlayer"
	EventTransferToBank     EventType = "transferToBank"
	EventTransferFromBank   EventType = "transferFromBank"
	EventPassGo             EventType = "passGo"
)

// Server to client events
const (
	EventConnected               EventType = "connected"
	EventLoginSuccess            EventType = "loginSuccess"
	EventLoginError              EventType = "loginError"
	EventCreateGameSuccess       EventType = "createGameSuccess"
	EventCreateGameError         EventType = "createGameError"
	EventJoinGameSuccess         EventType = "joinGameSuccess"
	EventJoinGameError           EventType = "joinGameError"
	EventLeaveGameSuccess        EventType = "leaveGameSuccess"
	EventUpdateGameSettingsError EventType = "updateGameSettingsError"
	EventStartGameError          EventType = "startGameError"
	EventFinishGameError         EventType = "finishGameError"
	EventUpdatePlayers           EventType = "updatePlayers"
	EventGameStateUpdate         EventType = "gameStateUpdate"
	EventGameStarted             EventType = "gameStarted"
	EventGameFinished            EventType = "gameFinished"
	EventTransactionError        EventType = "transactionError"
	EventTransactionLogUpdate    EventType = "transactionLogUpdate"
	EventLobbyGames              EventType = "lobbyGames"
	EventError                   EventType = "error"
)

// ErrorEvent returns the *Error event that answers a failed request, and
// whether the request type has one
func ErrorEvent(request EventType) (EventType, bool) {
	switch request {
	case EventLogin:
		return EventLoginError, true
	case EventCreateGame:
		return EventCreateGameError, true
	case EventJoinGame:
		return EventJoinGameError, true
	case EventUpdateGameSettings:
		return EventUpdateGameSettingsError, true
	case EventStartGame:
		return EventStartGameError, true
	case EventFinishGame:
		return EventFinishGameError, true
	case EventTransferToPlayer, EventTransferToBank, EventTransferFromBank, EventPassGo:
		return EventTransactionError, true
	default:
		return "", false
	}
}

// ConnectedPayload tells a new connection its own identity
type ConnectedPayload struct {
	ConnectionID ConnectionID `json:"connectionId"`
}

// LoginSuccessPayload answers a login. PlayerID repeats the session id for
// clients that still read the older field name.
type LoginSuccessPayload struct {
	SessionID SessionID `json:"sessionId"`
	PlayerID  SessionID `json:"playerId"`
	Username  string    `json:"username"`
}

// ErrorPayload carries a structured error code and a readable message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GameJoinedPayload answers a successful create or join
type GameJoinedPayload struct {
	GameID GameID   `json:"gameId"`
	Game   GameView `json:"game"`
}

// UpdatePlayersPayload is pushed on membership, host, settings or status changes
type UpdatePlayersPayload struct {
	Players  []PlayerView `json:"players"`
	HostID   ConnectionID `json:"hostId"`
	Settings GameSettings `json:"settings"`
	Status   GameStatus   `json:"status"`
}

// GameStateUpdatePayload is pushed after every balance change
type GameStateUpdatePayload struct {
	GameID  GameID       `json:"gameId"`
	Players []PlayerView `json:"players"`
}

// TransactionLogUpdatePayload is pushed after every balance change
type TransactionLogUpdatePayload struct {
	GameID GameID                `json:"gameId"`
	Logs   []TransactionLogEntry `json:"logs"`
}

// GameStartedPayload is pushed when the host starts the game
type GameStartedPayload struct {
	GameID   GameID       `json:"gameId"`
	Status   GameStatus   `json:"status"`
	Settings GameSettings `json:"settings"`
}

// GameFinishedPayload is pushed when the host finishes the game
type GameFinishedPayload struct {
	GameID     GameID         `json:"gameId"`
	Status     GameStatus     `json:"status"`
	Statistics GameStatistics `json:"statistics"`
}

// LobbyGamesPayload lists every game still waiting for players
type LobbyGamesPayload struct {
	Games []LobbyGame `json:"games"`
}

// EmptyPayload is sent with acknowledgements that carry no data
type EmptyPayload struct{}
