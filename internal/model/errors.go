package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Session errors
	ErrInvalidUsername = errors.New("username is required")
	ErrSessionInvalid  = errors.New("invalid player session")
	ErrSessionNotFound = errors.New("session not found")

	// Game room errors
	ErrGameNotFound     = errors.New("game not found")
	ErrGameNotJoinable  = errors.New("game is not accepting new players")
	ErrNotHost          = errors.New("player is not the host")
	ErrInvalidGameState = errors.New("game is not in the required state")

	// ErrIgnored marks a request that violates routing or identity rules. A
	// conforming client never produces one; the transport drops it without a
	// response.
	ErrIgnored = errors.New("request ignored")
)

// Ignored wraps ErrIgnored with the reason the request was dropped
func Ignored(reason string) error {
	return fmt.Errorf("%w: %s", ErrIgnored, reason)
}

// Transaction error codes. These are recoverable: the user may retry with
// corrected input and no state was changed.
const (
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodePassGoRateLimit   = "PASS_GO_RATE_LIMIT"
)

// TransactionError is a rejected balance-changing operation
type TransactionError struct {
	Code   string
	Reason string         // Optional sub-reason, e.g. which amount rule failed
	Params map[string]any // Optional values for message rendering
}

// Error implements error interface
func (e *TransactionError) Error() string {
	switch e.Code {
	case CodeInvalidAmount:
		switch e.Reason {
		case AmountRequired:
			return "amount is required"
		case AmountNotANumber:
			return "amount must be a number"
		case AmountNotFinite:
			return "amount must be finite"
		case AmountNotInteger:
			return "amount must be a whole number"
		case AmountNotPositive:
			return "amount must be positive"
		case AmountTooLarge:
			return "amount too large"
		}
		return "invalid amount"
	case CodeInsufficientFunds:
		return "insufficient funds"
	case CodeUnauthorized:
		return "bank withdrawals are disabled in this game"
	case CodePassGoRateLimit:
		return "pass go rate limit exceeded"
	default:
		return "transaction rejected"
	}
}

// NewTransactionError creates a TransactionError with the given code
func NewTransactionError(code string) *TransactionError {
	return &TransactionError{Code: code}
}
