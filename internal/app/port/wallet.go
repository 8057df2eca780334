package port

import (
	"context"

	"portfolio_aggregator/internal/domain/entity"
)

// WalletStore persists the tracked wallet list and the custom RPC endpoint.
type WalletStore interface {
	ListWallets(ctx context.Context) ([]entity.Wallet, error)
	// AddWallet reports false when the address is already stored.
	AddWallet(ctx context.Context, wallet entity.Wallet) (bool, error)
	RemoveWallet(ctx context.Context, address string) error
	HasWallet(ctx context.Context, address string) (bool, error)

	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// WalletProvider supplies wallet addresses from a static source (seed file).
type WalletProvider interface {
	GetWallets() ([]entity.Wallet, error)
}
