package port

import (
	"context"

	"portfolio_aggregator/internal/domain/entity"
)

// TokenListSource fetches the full token catalog.
type TokenListSource interface {
	FetchTokenList(ctx context.Context) ([]entity.AssetMetadata, error)
}

// AssetCatalog resolves asset identifiers to display metadata.
// Resolve never fails; a failed fetch yields an empty mapping.
type AssetCatalog interface {
	Resolve(ctx context.Context) map[string]entity.AssetMetadata
}

// PriceQuoteClient fetches quotes for one batch of identifiers in a single request.
type PriceQuoteClient interface {
	GetPrices(ctx context.Context, ids []string) (map[string]float64, error)
}

// PriceOracle quotes current USD prices for a set of asset identifiers.
// Unquoted identifiers are absent from the result; Quote never fails.
type PriceOracle interface {
	Quote(ctx context.Context, ids []string) map[string]float64
}
