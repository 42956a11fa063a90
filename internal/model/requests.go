package model

// Inbound request payloads. Fields holding untrusted values the server must
// validate itself (usernames, amounts, settings) are left loosely typed.

// LoginRequest asks for a new session
type LoginRequest struct {
	Username any `json:"username"`
}

// CreateGameRequest asks to create a game hosted by the session
type CreateGameRequest struct {
	SessionID SessionID   `json:"sessionId"`
	PlayerID  SessionID   `json:"playerId"`
	Settings  RawSettings `json:"settings"`
}

// Session returns the requesting session, accepting the older field name
func (r CreateGameRequest) Session() SessionID {
	if r.SessionID != "" {
		return r.SessionID
	}
	return r.PlayerID
}

// JoinGameRequest asks to join, or rejoin, a game
type JoinGameRequest struct {
	GameID    GameID    `json:"gameId"`
	SessionID SessionID `json:"sessionId"`
	PlayerID  SessionID `json:"playerId"`
}

// Session returns the requesting session, accepting the older field name
func (r JoinGameRequest) Session() SessionID {
	if r.SessionID != "" {
		return r.SessionID
	}
	return r.PlayerID
}

// GameRequest addresses a host action at a game
type GameRequest struct {
	GameID GameID `json:"gameId"`
}

// UpdateSettingsRequest carries a partial settings patch
type UpdateSettingsRequest struct {
	GameID   GameID      `json:"gameId"`
	Settings RawSettings `json:"settings"`
}

// TransferToPlayerRequest moves money between two participants
type TransferToPlayerRequest struct {
	GameID       GameID       `json:"gameId"`
	FromPlayerID ConnectionID `json:"fromPlayerId"`
	ToPlayerID   ConnectionID `json:"toPlayerId"`
	Amount       any          `json:"amount"`
}

// TransferToBankRequest pays money into the bank
type TransferToBankRequest struct {
	GameID       GameID       `json:"gameId"`
	FromPlayerID ConnectionID `json:"fromPlayerId"`
	Amount       any          `json:"amount"`
}

// TransferFromBankRequest withdraws money from the bank
type TransferFromBankRequest struct {
	GameID     GameID       `json:"gameId"`
	ToPlayerID ConnectionID `json:"toPlayerId"`
	Amount     any          `json:"amount"`
}

// PassGoRequest claims pass-go income
type PassGoRequest struct {
	GameID   GameID       `json:"gameId"`
	PlayerID ConnectionID `json:"playerId"`
}
