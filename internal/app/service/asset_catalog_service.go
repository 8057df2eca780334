package service

import (
	"context"
	"time"

	"portfolio_aggregator/internal/app/port"
	"portfolio_aggregator/internal/domain/entity"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const catalogCacheKey = "catalog"

// assetCatalogServiceImpl implements port.AssetCatalog. The first successful fetch is
// kept for the lifetime of the process; concurrent first calls share one fetch.
type assetCatalogServiceImpl struct {
	source  port.TokenListSource
	logger  port.Logger
	metrics port.MetricsRecorder
	timeout time.Duration
	cache   *cache.Cache
	group   singleflight.Group
}

// NewAssetCatalogService creates the catalog client. timeout bounds a single shared fetch;
// zero leaves it to the token source.
func NewAssetCatalogService(source port.TokenListSource, l port.Logger, m port.MetricsRecorder, timeout time.Duration) port.AssetCatalog {
	return &assetCatalogServiceImpl{
		source:  source,
		logger:  l,
		metrics: m,
		timeout: timeout,
		cache:   cache.New(cache.NoExpiration, 0),
	}
}

// Resolve returns the catalog keyed by asset id. On failure it returns an empty map and
// caches nothing, so the next call fetches again.
func (s *assetCatalogServiceImpl) Resolve(ctx context.Context) map[string]entity.AssetMetadata {
	if cached, ok := s.cache.Get(catalogCacheKey); ok {
		return cached.(map[string]entity.AssetMetadata)
	}

	// The shared fetch outlives any single caller; each caller only stops waiting on its own ctx.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(catalogCacheKey, func() (any, error) {
		if cached, ok := s.cache.Get(catalogCacheKey); ok {
			return cached, nil
		}
		return s.fetch(fetchCtx), nil
	})

	select {
	case res := <-ch:
		return res.Val.(map[string]entity.AssetMetadata)
	case <-ctx.Done():
		return map[string]entity.AssetMetadata{}
	}
}

func (s *assetCatalogServiceImpl) fetch(ctx context.Context) map[string]entity.AssetMetadata {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tokens, err := s.source.FetchTokenList(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch token catalog, continuing without metadata", "error", err)
		s.metrics.RecordLeafFetch("catalog", "error")
		return map[string]entity.AssetMetadata{}
	}

	catalog := make(map[string]entity.AssetMetadata, len(tokens))
	for _, t := range tokens {
		if t.Address == "" {
			continue
		}
		catalog[t.Address] = t
	}
	s.cache.Set(catalogCacheKey, catalog, cache.NoExpiration)
	s.metrics.RecordLeafFetch("catalog", "success")
	s.logger.Info("Token catalog loaded", "count", len(catalog))
	return catalog
}
