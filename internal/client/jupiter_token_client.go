package client

import (
	"context"
	"time"

	"portfolio_aggregator/internal/domain/entity"
	wire "portfolio_aggregator/internal/entity"

	"go.uber.org/zap"
)

// JupiterTokenClient fetches the Jupiter token list. It implements port.TokenListSource.
type JupiterTokenClient struct {
	http jupiterHTTP
	url  string
}

// NewJupiterTokenClient creates a token list client for the given list URL
// (for example https://token.jup.ag/strict).
func NewJupiterTokenClient(listURL string, timeout time.Duration, logger *zap.Logger) *JupiterTokenClient {
	return &JupiterTokenClient{
		http: newJupiterHTTP(timeout, logger, "JupiterTokenClient"),
		url:  trimBaseURL(listURL),
	}
}

// FetchTokenList downloads and converts the token list. Entries without an address are dropped.
func (c *JupiterTokenClient) FetchTokenList(ctx context.Context) ([]entity.AssetMetadata, error) {
	var tokens []wire.JupiterToken
	if err := c.http.getJSON(ctx, c.url, &tokens); err != nil {
		return nil, err
	}

	out := make([]entity.AssetMetadata, 0, len(tokens))
	for _, t := range tokens {
		if t.Address == "" {
			continue
		}
		out = append(out, toAssetMetadata(t))
	}
	c.http.logger.Debug("Fetched token list", zap.Int("count", len(out)))
	return out, nil
}

func toAssetMetadata(t wire.JupiterToken) entity.AssetMetadata {
	decimals := t.Decimals
	if decimals < 0 || decimals > 255 {
		decimals = 0
	}
	return entity.AssetMetadata{
		Address:  t.Address,
		Symbol:   t.Symbol,
		Name:     t.Name,
		Decimals: uint8(decimals),
		LogoURI:  t.LogoURI,
	}
}
