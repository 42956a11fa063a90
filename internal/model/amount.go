package model

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// MaxSafeAmount is the largest integer a client's number type can represent
// exactly (2^53 - 1). Amounts and balances never exceed it.
const MaxSafeAmount int64 = 1<<53 - 1

// Reasons attached to INVALID_AMOUNT errors
const (
	AmountRequired    = "required"
	AmountNotANumber  = "not_a_number"
	AmountNotFinite   = "not_finite"
	AmountNotInteger  = "not_integer"
	AmountNotPositive = "not_positive"
	AmountTooLarge    = "too_large"
)

// ParseAmount validates an untrusted money amount. The input must be present,
// numeric, finite, an integer, strictly positive and within MaxSafeAmount.
// Numeric strings are accepted. On failure the returned error is a
// *TransactionError with code INVALID_AMOUNT.
func ParseAmount(raw any) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, invalidAmount(AmountRequired)
	case string:
		return parseAmountString(v)
	case json.Number:
		return parseAmountString(string(v))
	case int:
		return checkAmountInt(int64(v))
	case int32:
		return checkAmountInt(int64(v))
	case int64:
		return checkAmountInt(v)
	case float32:
		return checkAmountFloat(float64(v))
	case float64:
		return checkAmountFloat(v)
	default:
		return 0, invalidAmount(AmountNotANumber)
	}
}

func parseAmountString(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, invalidAmount(AmountRequired)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return checkAmountInt(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0) {
			return 0, invalidAmount(AmountNotFinite)
		}
		return 0, invalidAmount(AmountNotANumber)
	}
	return checkAmountFloat(f)
}

func checkAmountFloat(f float64) (int64, error) {
	switch {
	case math.IsNaN(f):
		return 0, invalidAmount(AmountNotANumber)
	case math.IsInf(f, 0):
		return 0, invalidAmount(AmountNotFinite)
	case f != math.Trunc(f):
		return 0, invalidAmount(AmountNotInteger)
	case f <= 0:
		return 0, invalidAmount(AmountNotPositive)
	case f > float64(MaxSafeAmount):
		return 0, invalidAmount(AmountTooLarge)
	}
	return int64(f), nil
}

func checkAmountInt(n int64) (int64, error) {
	if n <= 0 {
		return 0, invalidAmount(AmountNotPositive)
	}
	if n > MaxSafeAmount {
		return 0, invalidAmount(AmountTooLarge)
	}
	return n, nil
}

func invalidAmount(reason string) error {
	return &TransactionError{Code: CodeInvalidAmount, Reason: reason}
}
