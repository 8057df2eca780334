package port

import (
	"context"

	"portfolio_aggregator/internal/domain/entity"
)

// PortfolioAggregator produces one consolidated snapshot for a list of wallets.
type PortfolioAggregator interface {
	Aggregate(ctx context.Context, wallets []string) entity.PortfolioSnapshot
}

// PortfolioService exposes the refresh/loading contract and wallet management.
type PortfolioService interface {
	Refresh(ctx context.Context) entity.PortfolioSnapshot
	Current() entity.PortfolioSnapshot
	Loading() bool

	Wallets(ctx context.Context) ([]entity.Wallet, error)
	AddWallet(ctx context.Context, address string) (entity.Wallet, error)
	RemoveWallet(ctx context.Context, address string) error

	// Endpoint returns the persisted custom RPC endpoint, empty when the network default is in use.
	Endpoint(ctx context.Context) (string, error)
	// ActiveEndpoint returns the endpoint ledger clients are currently built for.
	ActiveEndpoint() string
	SetEndpoint(ctx context.Context, endpoint string) error
}
