package tokenloader

import (
	"context"
	"fmt"
	"os"

	"portfolio_aggregator/internal/domain/entity"
	wire "portfolio_aggregator/internal/entity"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultTokenListPath = "data/tokens/solana.json"

// TokenFileLoader reads a token list in the Jupiter list format from disk.
// It implements port.TokenListSource for offline use.
type TokenFileLoader struct {
	path       string
	loggerInfo func(msg string, args ...any)
	loggerWarn func(msg string, args ...any)
}

// NewTokenLoader creates a new TokenFileLoader. An empty path uses data/tokens/solana.json.
func NewTokenLoader(path string, loggerInfo func(msg string, args ...any), loggerWarn func(msg string, args ...any)) *TokenFileLoader {
	if path == "" {
		path = defaultTokenListPath
	}
	return &TokenFileLoader{
		path:       path,
		loggerInfo: loggerInfo,
		loggerWarn: loggerWarn,
	}
}

// FetchTokenList reads and converts the file. Entries without an address or with
// out-of-range decimals are skipped.
func (l *TokenFileLoader) FetchTokenList(ctx context.Context) ([]entity.AssetMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", l.path, err)
	}

	var tokens []wire.JupiterToken
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tokens from file %s: %w", l.path, err)
	}

	out := make([]entity.AssetMetadata, 0, len(tokens))
	for _, t := range tokens {
		if t.Address == "" || t.Decimals < 0 || t.Decimals > 255 {
			if l.loggerWarn != nil {
				l.loggerWarn("Skipping malformed token entry", "path", l.path, "symbol", t.Symbol, "address", t.Address)
			}
			continue
		}
		out = append(out, entity.AssetMetadata{
			Address:  t.Address,
			Symbol:   t.Symbol,
			Name:     t.Name,
			Decimals: uint8(t.Decimals),
			LogoURI:  t.LogoURI,
		})
	}

	if l.loggerInfo != nil {
		l.loggerInfo("Loaded tokens from file", "path", l.path, "count", len(out))
	}
	return out, nil
}
