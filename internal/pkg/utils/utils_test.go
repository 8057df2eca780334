package utils

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHumanUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   *big.Int
		decimals uint8
		want     string
	}{
		{"lamports", big.NewInt(2_000_000_000), 9, "2"},
		{"two decimals", big.NewInt(750), 2, "7.5"},
		{"zero decimals", big.NewInt(42), 0, "42"},
		{"nil", nil, 6, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHumanUnits(tt.amount, tt.decimals)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestParseRawAmount(t *testing.T) {
	v, ok := ParseRawAmount("18446744073709551616")
	require.True(t, ok)
	assert.Equal(t, "18446744073709551616", v.String())

	_, ok = ParseRawAmount("")
	assert.False(t, ok)
	_, ok = ParseRawAmount("12a")
	assert.False(t, ok)
}

func TestBatchStrings(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, BatchStrings(items, 2))
	assert.Equal(t, [][]string{items}, BatchStrings(items, 0))
	assert.Empty(t, BatchStrings(nil, 3))
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, UniqueStrings([]string{"b", "", "a", "b", "a"}))
}

func TestValidateSolanaAddress(t *testing.T) {
	assert.NoError(t, ValidateSolanaAddress("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"))
	assert.NoError(t, ValidateSolanaAddress("11111111111111111111111111111111"))

	assert.Error(t, ValidateSolanaAddress(""))
	assert.Error(t, ValidateSolanaAddress(" EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"))
	assert.Error(t, ValidateSolanaAddress("0x0000000000000000000000000000000000000000"))
	assert.Error(t, ValidateSolanaAddress("EPjFWdd5AufqSSqeM2qN1xzyb"))
}

func TestShortenAddress(t *testing.T) {
	assert.Equal(t, "EPjF...Dt1v", ShortenAddress("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", 4))
	assert.Equal(t, "abc", ShortenAddress("abc", 4))
	assert.Equal(t, "", ShortenAddress("", 4))
}
