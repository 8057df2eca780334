package entity

import "math/big"

// Holding is one token position reported by the ledger for a single wallet.
type Holding struct {
	AssetID   string   `json:"assetId"`
	RawAmount *big.Int `json:"-"`
	Decimals  uint8    `json:"decimals"`
}

// IsPositive reports whether the holding carries a strictly positive raw amount.
func (h Holding) IsPositive() bool {
	return h.RawAmount != nil && h.RawAmount.Sign() > 0
}
