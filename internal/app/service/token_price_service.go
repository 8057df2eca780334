package service

import (
	"context"
	"sync"

	"portfolio_aggregator/internal/app/port"
	"portfolio_aggregator/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// tokenPriceServiceImpl implements port.PriceOracle over a batch-limited quote client.
type tokenPriceServiceImpl struct {
	client           port.PriceQuoteClient
	logger           port.Logger
	metrics          port.MetricsRecorder
	maxIDsPerRequest int
}

// NewTokenPriceService creates the price oracle. Id sets larger than maxIDsPerRequest are
// split into chunks requested concurrently.
func NewTokenPriceService(client port.PriceQuoteClient, l port.Logger, m port.MetricsRecorder, maxIDsPerRequest int) port.PriceOracle {
	if maxIDsPerRequest <= 0 {
		maxIDsPerRequest = 100
	}
	return &tokenPriceServiceImpl{
		client:           client,
		logger:           l,
		metrics:          m,
		maxIDsPerRequest: maxIDsPerRequest,
	}
}

// Quote prices ids. A failed chunk contributes nothing; it never fails the call.
func (s *tokenPriceServiceImpl) Quote(ctx context.Context, ids []string) map[string]float64 {
	prices := make(map[string]float64)
	unique := utils.UniqueStrings(ids)
	if len(unique) == 0 {
		return prices
	}

	var mu sync.Mutex
	var g errgroup.Group
	for _, chunk := range utils.BatchStrings(unique, s.maxIDsPerRequest) {
		g.Go(func() error {
			quotes, err := s.client.GetPrices(ctx, chunk)
			if err != nil {
				s.logger.Warn("Price request failed, ids left unpriced", "count", len(chunk), "error", err)
				s.metrics.RecordLeafFetch("price", "error")
				return nil
			}
			s.metrics.RecordLeafFetch("price", "success")

			mu.Lock()
			for id, price := range quotes {
				if price > 0 {
					prices[id] = price
				}
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Debug("Prices fetched", "requested", len(unique), "priced", len(prices))
	return prices
}
