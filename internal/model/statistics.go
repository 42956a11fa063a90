package model

// PlayerAmount is a "most" leaderboard entry keyed by summed amount
type PlayerAmount struct {
	Player PlayerName `json:"player"`
	Amount int64      `json:"amount"`
}

// PlayerCount is a "most" leaderboard entry keyed by occurrence count
type PlayerCount struct {
	Player PlayerName `json:"player"`
	Count  int        `json:"count"`
}

// PlayerBalance is a leaderboard entry keyed by final balance
type PlayerBalance struct {
	Player  PlayerName `json:"player"`
	Balance int64      `json:"balance"`
}

// TransferRecord describes a single player-to-player transfer
type TransferRecord struct {
	From   PlayerName `json:"from"`
	To     PlayerName `json:"to"`
	Amount int64      `json:"amount"`
}

// GameStatistics summarises a finished game. Every field holds its zero value
// (no player, zero amount) when there was nothing to count.
type GameStatistics struct {
	MostBankWithdrawals   PlayerAmount   `json:"mostBankWithdrawals"`
	MostBankDeposits      PlayerAmount   `json:"mostBankDeposits"`
	MostGenerous          PlayerAmount   `json:"mostGenerous"`
	MostReceived          PlayerAmount   `json:"mostReceived"`
	LargestTransfer       TransferRecord `json:"largestTransfer"`
	MostBroke             PlayerBalance  `json:"mostBroke"`
	MostPassGo            PlayerCount    `json:"mostPassGo"`
	TotalMoneyTransferred int64          `json:"totalMoneyTransferred"`
}
