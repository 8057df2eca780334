package service

import (
	"context"
	"math/big"
	"sort"
	"time"

	"portfolio_aggregator/internal/app/port"
	"portfolio_aggregator/internal/domain/entity"
	"portfolio_aggregator/internal/pkg/metrics"
	"portfolio_aggregator/internal/pkg/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// SetupFailureMessage is the only error text a snapshot ever carries.
const SetupFailureMessage = "Failed to fetch portfolio data. RPC might be unreachable or rate limited."

const (
	queryNativeBalance = "native_balance"
	queryHoldings      = "holdings"
)

// portfolioAggregatorImpl implements port.PortfolioAggregator.
type portfolioAggregatorImpl struct {
	clientProvider       port.LedgerClientProvider
	catalog              port.AssetCatalog
	oracle               port.PriceOracle
	logger               port.Logger
	metrics              port.MetricsRecorder
	maxConcurrentWallets int
}

// NewPortfolioAggregator creates the aggregator. maxConcurrentWallets bounds how many wallets
// are queried at once; zero or less queries every wallet at once.
func NewPortfolioAggregator(
	cp port.LedgerClientProvider,
	catalog port.AssetCatalog,
	oracle port.PriceOracle,
	l port.Logger,
	m port.MetricsRecorder,
	maxConcurrentWallets int,
) port.PortfolioAggregator {
	return &portfolioAggregatorImpl{
		clientProvider:       cp,
		catalog:              catalog,
		oracle:               oracle,
		logger:               l,
		metrics:              m,
		maxConcurrentWallets: maxConcurrentWallets,
	}
}

// walletResult holds what one wallet's two queries returned. A nil nativeBalance means the
// native query failed.
type walletResult struct {
	nativeBalance *big.Int
	holdings      []entity.Holding
}

// mergeEntry accumulates one asset across wallets.
type mergeEntry struct {
	assetID  string
	balance  decimal.Decimal
	decimals uint8
	native   bool
}

// Aggregate queries every wallet, merges the results per asset, resolves metadata and prices,
// and returns the snapshot sorted by USD value.
func (a *portfolioAggregatorImpl) Aggregate(ctx context.Context, wallets []string) entity.PortfolioSnapshot {
	start := time.Now()
	if len(wallets) == 0 {
		a.metrics.RecordRun(metrics.ResultEmpty, time.Since(start))
		return entity.EmptySnapshot()
	}

	client, err := a.clientProvider.GetClient(ctx)
	if err != nil {
		a.logger.Error("Ledger client unavailable, aborting aggregation", "endpoint", a.clientProvider.Endpoint(), "error", err)
		a.metrics.RecordRun(metrics.ResultSetupFailure, time.Since(start))
		snapshot := entity.EmptySnapshot()
		snapshot.Error = SetupFailureMessage
		snapshot.WalletCount = len(wallets)
		snapshot.GeneratedAt = time.Now().UTC()
		return snapshot
	}
	def := client.Definition()

	results := a.queryWallets(ctx, client, wallets)

	// Merge in wallet input order so discovery order does not depend on which query finished first.
	entries := map[string]*mergeEntry{}
	order := []string{def.NativeAssetID}
	native := &mergeEntry{assetID: def.NativeAssetID, decimals: uint8(def.Decimals), native: true}
	entries[def.NativeAssetID] = native
	nativeTotal := new(big.Int)

	for _, r := range results {
		if r.nativeBalance != nil && r.nativeBalance.Sign() > 0 {
			nativeTotal.Add(nativeTotal, r.nativeBalance)
		}
		for _, h := range r.holdings {
			if !h.IsPositive() || h.AssetID == "" || def.IsNative(h.AssetID) {
				continue
			}
			e, ok := entries[h.AssetID]
			if !ok {
				e = &mergeEntry{assetID: h.AssetID, balance: decimal.Zero, decimals: h.Decimals}
				entries[h.AssetID] = e
				order = append(order, h.AssetID)
			}
			e.balance = e.balance.Add(utils.ToHumanUnits(h.RawAmount, h.Decimals))
		}
	}
	native.balance = utils.ToHumanUnits(nativeTotal, native.decimals)

	catalog := a.catalog.Resolve(ctx)

	pricingIDs := make([]string, 0, len(order))
	for _, id := range order {
		pricingIDs = append(pricingIDs, def.PricingID(id))
	}
	prices := a.oracle.Quote(ctx, pricingIDs)

	tokens := make([]entity.AssetPosition, 0, len(order))
	for _, id := range order {
		e := entries[id]
		if !e.balance.IsPositive() {
			continue
		}
		price := decimal.Zero
		if p, ok := prices[def.PricingID(id)]; ok && p > 0 {
			price = decimal.NewFromFloat(p)
		}
		tokens = append(tokens, entity.NewAssetPosition(id, a.displayMetadata(def, catalog, e), e.balance, e.decimals, price, e.native))
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].ValueUSD.GreaterThan(tokens[j].ValueUSD)
	})

	total := decimal.Zero
	for _, t := range tokens {
		total = total.Add(t.ValueUSD)
	}

	snapshot := entity.PortfolioSnapshot{
		TotalValueUSD: total,
		Tokens:        tokens,
		WalletCount:   len(wallets),
		GeneratedAt:   time.Now().UTC(),
	}

	totalFloat, _ := total.Float64()
	a.metrics.RecordSnapshot(totalFloat, len(tokens))
	a.metrics.RecordRun(metrics.ResultSuccess, time.Since(start))
	a.logger.Info("Portfolio aggregated",
		"wallets", len(wallets),
		"positions", len(tokens),
		"total_value_usd", total.StringFixed(2),
		"duration", time.Since(start))
	return snapshot
}

// queryWallets runs both queries for every wallet concurrently and waits for all of them.
// Failures are logged and leave the corresponding part of the result empty.
func (a *portfolioAggregatorImpl) queryWallets(ctx context.Context, client port.LedgerClient, wallets []string) []walletResult {
	results := make([]walletResult, len(wallets))

	var g errgroup.Group
	if a.maxConcurrentWallets > 0 {
		g.SetLimit(a.maxConcurrentWallets)
	}
	for i, address := range wallets {
		g.Go(func() error {
			results[i] = a.queryWallet(ctx, client, address)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (a *portfolioAggregatorImpl) queryWallet(ctx context.Context, client port.LedgerClient, address string) walletResult {
	short := utils.ShortenAddress(address, 4)
	if err := client.ValidateAddress(address); err != nil {
		a.logger.Warn("Skipping invalid wallet address", "address", short, "error", err)
		a.metrics.RecordQueryFailure(queryNativeBalance)
		a.metrics.RecordQueryFailure(queryHoldings)
		return walletResult{}
	}

	var res walletResult
	var g errgroup.Group
	g.Go(func() error {
		balance, err := client.GetNativeBalance(ctx, address)
		if err != nil {
			a.logger.Warn("Native balance query failed", "address", short, "error", err)
			a.metrics.RecordQueryFailure(queryNativeBalance)
			return nil
		}
		res.nativeBalance = balance
		return nil
	})
	g.Go(func() error {
		holdings, err := client.GetHoldings(ctx, address)
		if err != nil {
			a.logger.Warn("Holdings query failed", "address", short, "error", err)
			a.metrics.RecordQueryFailure(queryHoldings)
			return nil
		}
		res.holdings = holdings
		return nil
	})
	_ = g.Wait()

	a.logger.Debug("Wallet queried", "address", short, "holdings", len(res.holdings), "native_ok", res.nativeBalance != nil)
	return res
}

func (a *portfolioAggregatorImpl) displayMetadata(def entity.NetworkDefinition, catalog map[string]entity.AssetMetadata, e *mergeEntry) entity.AssetMetadata {
	if e.native {
		meta := entity.AssetMetadata{Address: e.assetID, Symbol: def.NativeSymbol, Name: def.NativeName, Decimals: e.decimals}
		if wrapped, ok := catalog[def.NativePricingID]; ok {
			meta.LogoURI = wrapped.LogoURI
		}
		return meta
	}
	if meta, ok := catalog[e.assetID]; ok {
		return meta
	}
	return entity.FallbackAssetMetadata(e.assetID)
}
