package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountAccepts(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int64
	}{
		{"int", 500, 500},
		{"int64", int64(42), 42},
		{"whole float", 1500.0, 1500},
		{"json number", json.Number("200"), 200},
		{"numeric string", "750", 750},
		{"padded string", "  12 ", 12},
		{"exponent string", "1e3", 1000},
		{"safe ceiling", MaxSafeAmount, MaxSafeAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmountRejects(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		reason string
	}{
		{"missing", nil, AmountRequired},
		{"empty string", "", AmountRequired},
		{"blank string", "   ", AmountRequired},
		{"zero", 0, AmountNotPositive},
		{"negative", -5, AmountNotPositive},
		{"negative json number", json.Number("-5"), AmountNotPositive},
		{"word", "abc", AmountNotANumber},
		{"bool", true, AmountNotANumber},
		{"object", map[string]any{}, AmountNotANumber},
		{"nan", math.NaN(), AmountNotANumber},
		{"nan string", "NaN", AmountNotANumber},
		{"infinity", math.Inf(1), AmountNotFinite},
		{"infinity string", "Infinity", AmountNotFinite},
		{"overflowing string", "1e400", AmountNotFinite},
		{"fraction", 3.5, AmountNotInteger},
		{"fraction string", "3.5", AmountNotInteger},
		{"above ceiling", MaxSafeAmount + 1, AmountTooLarge},
		{"far above ceiling", 1e20, AmountTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAmount(tt.raw)
			require.Error(t, err)

			var txErr *TransactionError
			require.ErrorAs(t, err, &txErr)
			assert.Equal(t, CodeInvalidAmount, txErr.Code)
			assert.Equal(t, tt.reason, txErr.Reason)
		})
	}
}
