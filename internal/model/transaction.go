package model

import "time"

// TransactionType identifies the kind of money movement recorded in the log
type TransactionType string

const (
	TransactionPlayerToPlayer TransactionType = "PLAYER_TO_PLAYER"
	TransactionToBank         TransactionType = "TO_BANK"
	TransactionFromBank       TransactionType = "FROM_BANK"
	TransactionPassGo         TransactionType = "PASS_GO"
)

// DefaultTransactionLogLimit is how many entries a game's log retains
const DefaultTransactionLogLimit = 100

// TransactionLogEntry records one successful balance mutation. From is empty
// for money coming out of the bank, To is empty for money going into it.
type TransactionLogEntry struct {
	ID        string          `json:"id"`
	Type      TransactionType `json:"type"`
	From      PlayerName      `json:"from"`
	To        PlayerName      `json:"to"`
	Amount    int64           `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}
