package port

import (
	"context"
	"math/big"

	"portfolio_aggregator/internal/domain/entity"
)

// LedgerClient defines the balance queries the aggregator issues against the ledger.
// Both queries may fail independently.
type LedgerClient interface {
	// ValidateAddress checks that address is a well-formed account address on this ledger.
	ValidateAddress(address string) error

	// GetNativeBalance fetches the native currency balance in the smallest unit (lamports).
	GetNativeBalance(ctx context.Context, address string) (*big.Int, error)

	// GetHoldings enumerates all token accounts owned by address.
	GetHoldings(ctx context.Context, address string) ([]entity.Holding, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// LedgerClientProvider constructs (or returns a cached) ledger client for the configured endpoint.
// An error here means the ledger is unreachable as a whole.
type LedgerClientProvider interface {
	GetClient(ctx context.Context) (LedgerClient, error)
	// Endpoint returns the RPC endpoint the next client will use.
	Endpoint() string
	// SetEndpoint switches the endpoint; an empty value restores the network default.
	SetEndpoint(endpoint string)
}

// AddressValidator validates wallet addresses at the boundary.
type AddressValidator interface {
	ValidateAddress(address string) error
}
