package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	wire "portfolio_aggregator/internal/entity"

	"go.uber.org/zap"
)

// JupiterPriceClient requests USD quotes from the Jupiter price API. It implements port.PriceQuoteClient.
type JupiterPriceClient struct {
	http             jupiterHTTP
	baseURL          string
	maxIDsPerRequest int
}

// NewJupiterPriceClient creates a price client. maxIDsPerRequest caps a single request.
func NewJupiterPriceClient(baseURL string, timeout time.Duration, logger *zap.Logger, maxIDsPerRequest int) *JupiterPriceClient {
	return &JupiterPriceClient{
		http:             newJupiterHTTP(timeout, logger, "JupiterPriceClient"),
		baseURL:          trimBaseURL(baseURL),
		maxIDsPerRequest: maxIDsPerRequest,
	}
}

// MaxIDsPerRequest returns the batch ceiling of a single request.
func (c *JupiterPriceClient) MaxIDsPerRequest() int {
	return c.maxIDsPerRequest
}

// GetPrices quotes one batch of ids. Ids the API returns as null or without a parseable
// positive price are left out of the result.
func (c *JupiterPriceClient) GetPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	if len(ids) == 0 {
		return map[string]float64{}, nil
	}
	if c.maxIDsPerRequest > 0 && len(ids) > c.maxIDsPerRequest {
		c.http.logger.Warn("Number of ids exceeds maxIDsPerRequest",
			zap.Int("requestedCount", len(ids)),
			zap.Int("maxAllowed", c.maxIDsPerRequest))
		return nil, fmt.Errorf("number of ids (%d) exceeds max ids per request (%d)", len(ids), c.maxIDsPerRequest)
	}

	requestURL := c.baseURL + "?ids=" + url.QueryEscape(strings.Join(ids, ","))
	c.http.logger.Debug("Requesting prices", zap.String("url", requestURL), zap.Int("count", len(ids)))

	var body wire.JupiterPriceResponse
	if err := c.http.getJSON(ctx, requestURL, &body); err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(body.Data))
	for key, quote := range body.Data {
		if quote == nil || quote.Price == "" {
			continue
		}
		price, err := strconv.ParseFloat(quote.Price, 64)
		if err != nil || price <= 0 {
			c.http.logger.Debug("Skipping unusable price", zap.String("id", key), zap.String("price", quote.Price))
			continue
		}
		id := quote.ID
		if id == "" {
			id = key
		}
		prices[id] = price
	}
	return prices, nil
}
