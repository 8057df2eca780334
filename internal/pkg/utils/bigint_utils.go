package utils

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ToHumanUnits converts a raw ledger integer amount to human units using decimals.
// Example: amount=2000000000, decimals=9 => 2
func ToHumanUnits(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// ParseRawAmount parses a base-10 raw token amount as reported by the ledger.
func ParseRawAmount(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	return new(big.Int).SetString(s, 10)
}
