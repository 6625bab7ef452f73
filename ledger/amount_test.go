package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"100", "100"},
		{"100.005", "100.01"},
		{"100.004", "100"},
		{"-2.675", "-2.68"},
		{"0.125", "0.13"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := RoundMoney(decimal.RequireFromString(tt.input))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "want %s, got %s", tt.want, got)
		})
	}
}

func TestRoundRate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"280", "280"},
		{"280.12345", "280.1235"},
		{"0.00004", "0"},
		{"1.00005", "1.0001"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := RoundRate(decimal.RequireFromString(tt.input))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount("1234.56")
	assert.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("1234.56")))

	_, err = ParseAmount("not-a-number")
	assert.Error(t, err)

	assert.Panics(t, func() { MustParseAmount("nope") })
}
