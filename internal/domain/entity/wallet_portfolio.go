package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetPosition is one row of a portfolio snapshot: the merged balance of a single asset
// across every tracked wallet.
type AssetPosition struct {
	AssetID       string          `json:"assetId"`
	DisplaySymbol string          `json:"symbol"`
	DisplayName   string          `json:"name"`
	Balance       decimal.Decimal `json:"balance"`
	Decimals      uint8           `json:"decimals"`
	PriceUSD      decimal.Decimal `json:"priceUsd"`
	ValueUSD      decimal.Decimal `json:"valueUsd"`
	IconRef       string          `json:"logoURI,omitempty"`
	IsNative      bool            `json:"isNative"`
}

// NewAssetPosition builds a position and derives its value from balance and price.
func NewAssetPosition(assetID string, meta AssetMetadata, balance decimal.Decimal, decimals uint8, price decimal.Decimal, native bool) AssetPosition {
	return AssetPosition{
		AssetID:       assetID,
		DisplaySymbol: meta.Symbol,
		DisplayName:   meta.Name,
		Balance:       balance,
		Decimals:      decimals,
		PriceUSD:      price,
		ValueUSD:      balance.Mul(price),
		IconRef:       meta.LogoURI,
		IsNative:      native,
	}
}

// PortfolioSnapshot is one immutable, fully-resolved aggregation result.
type PortfolioSnapshot struct {
	TotalValueUSD decimal.Decimal `json:"totalValueUsd"`
	Tokens        []AssetPosition `json:"tokens"`
	IsLoading     bool            `json:"isLoading"`
	Error         string          `json:"error,omitempty"`
	WalletCount   int             `json:"walletCount"`
	GeneratedAt   time.Time       `json:"generatedAt"`
}

// EmptySnapshot returns the zero-value snapshot: no positions, zero total, no error.
func EmptySnapshot() PortfolioSnapshot {
	return PortfolioSnapshot{
		TotalValueUSD: decimal.Zero,
		Tokens:        []AssetPosition{},
	}
}

// HasError reports whether the snapshot was produced by a failed run.
func (s PortfolioSnapshot) HasError() bool {
	return s.Error != ""
}

// WithLoading returns a copy of the snapshot carrying the given loading flag.
// The token slice is copied so callers cannot mutate a published snapshot.
func (s PortfolioSnapshot) WithLoading(loading bool) PortfolioSnapshot {
	tokens := make([]AssetPosition, len(s.Tokens))
	copy(tokens, s.Tokens)
	s.Tokens = tokens
	s.IsLoading = loading
	return s
}
