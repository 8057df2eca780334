package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"portfolio_aggregator/internal/domain/entity"
	"portfolio_aggregator/internal/pkg/logger"
	"portfolio_aggregator/internal/pkg/metrics"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wsol = "So11111111111111111111111111111111111111112"

type aggregatorFixture struct {
	ledger   *fakeLedger
	provider *fakeProvider
	catalog  *fakeCatalog
	oracle   *fakeOracle
}

func newAggregatorFixture() *aggregatorFixture {
	ledger := newFakeLedger()
	return &aggregatorFixture{
		ledger:   ledger,
		provider: &fakeProvider{client: ledger},
		catalog:  &fakeCatalog{},
		oracle:   &fakeOracle{prices: map[string]float64{}},
	}
}

func (f *aggregatorFixture) aggregate(t *testing.T, wallets ...string) entity.PortfolioSnapshot {
	t.Helper()
	agg := NewPortfolioAggregator(f.provider, f.catalog, f.oracle, logger.Nop(), metrics.Nop{}, 0)
	return agg.Aggregate(context.Background(), wallets)
}

func assetIDs(s entity.PortfolioSnapshot) []string {
	ids := make([]string, 0, len(s.Tokens))
	for _, t := range s.Tokens {
		ids = append(ids, t.AssetID)
	}
	return ids
}

func position(t *testing.T, s entity.PortfolioSnapshot, id string) entity.AssetPosition {
	t.Helper()
	for _, p := range s.Tokens {
		if p.AssetID == id {
			return p
		}
	}
	require.Failf(t, "position not found", "asset %s", id)
	return entity.AssetPosition{}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAggregateConcreteScenario(t *testing.T) {
	f := newAggregatorFixture()
	f.ledger.native[walletA] = lamports(2_000_000_000)
	f.ledger.native[walletB] = lamports(1_000_000_000)
	f.ledger.holdings[walletA] = []entity.Holding{holding(mintT1, 500, 2)}
	f.ledger.holdings[walletB] = []entity.Holding{holding(mintT1, 250, 2)}
	f.oracle.prices = map[string]float64{wsol: 100.0, mintT1: 2.0}

	s := f.aggregate(t, walletA, walletB)

	require.False(t, s.HasError())
	assert.False(t, s.IsLoading)
	assert.Equal(t, []string{"SOL", mintT1}, assetIDs(s))

	sol := s.Tokens[0]
	assert.True(t, sol.Balance.Equal(dec("3")), sol.Balance.String())
	assert.True(t, sol.ValueUSD.Equal(dec("300")), sol.ValueUSD.String())
	assert.True(t, sol.IsNative)
	assert.Equal(t, "SOL", sol.DisplaySymbol)
	assert.Equal(t, "Solana", sol.DisplayName)
	assert.Equal(t, uint8(9), sol.Decimals)

	t1 := s.Tokens[1]
	assert.True(t, t1.Balance.Equal(dec("7.5")), t1.Balance.String())
	assert.True(t, t1.ValueUSD.Equal(dec("15")), t1.ValueUSD.String())

	assert.True(t, s.TotalValueUSD.Equal(dec("315")), s.TotalValueUSD.String())
	assert.Equal(t, 2, s.WalletCount)
}

func TestAggregateEmptyInputTouchesNothing(t *testing.T) {
	f := newAggregatorFixture()

	s := f.aggregate(t)

	assert.True(t, s.TotalValueUSD.IsZero())
	assert.NotNil(t, s.Tokens)
	assert.Empty(t, s.Tokens)
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.Error)
	assert.Equal(t, 0, f.provider.getCount())
	assert.Equal(t, int32(0), f.catalog.calls.Load())
	assert.Equal(t, 0, f.oracle.callCount())
	assert.Equal(t, int32(0), f.ledger.calls.Load())
}

func TestAggregateSetupFailure(t *testing.T) {
	f := newAggregatorFixture()
	f.provider.err = errBoom

	s := f.aggregate(t, walletA)

	assert.Equal(t, SetupFailureMessage, s.Error)
	assert.Empty(t, s.Tokens)
	assert.True(t, s.TotalValueUSD.IsZero())
	assert.False(t, s.IsLoading)
	assert.Equal(t, int32(0), f.catalog.calls.Load())
	assert.Equal(t, 0, f.oracle.callCount())
}

func TestAggregatePartialFailureIsolation(t *testing.T) {
	f := newAggregatorFixture()
	f.ledger.native[walletA] = lamports(1_000_000_000)
	f.ledger.holdings[walletA] = []entity.Holding{holding(mintT1, 100, 0)}
	f.ledger.native[walletB] = lamports(5_000_000_000)
	f.ledger.holdings[walletB] = []entity.Holding{holding(mintT2, 999, 0)}
	f.ledger.nativeErr[walletB] = errBoom
	f.ledger.holdingsErr[walletB] = errBoom
	f.ledger.native[walletC] = lamports(500_000_000)
	f.ledger.holdings[walletC] = []entity.Holding{holding(mintT1, 50, 0)}
	f.oracle.prices = map[string]float64{wsol: 10, mintT1: 1, mintT2: 1}

	s := f.aggregate(t, walletA, walletB, walletC)

	assert.Empty(t, s.Error)
	assert.ElementsMatch(t, []string{"SOL", mintT1}, assetIDs(s))
	assert.True(t, position(t, s, "SOL").Balance.Equal(dec("1.5")))
	assert.True(t, position(t, s, mintT1).Balance.Equal(dec("150")))
}

func TestAggregateQueriesFailIndependently(t *testing.T) {
	f := newAggregatorFixture()
	f.ledger.native[walletA] = lamports(2_000_000_000)
	f.ledger.holdingsErr[walletA] = errBoom
	f.ledger.nativeErr[walletB] = errBoom
	f.ledger.holdings[walletB] = []entity.Holding{holding(mintT1, 3, 0)}

	s := f.aggregate(t, walletA, walletB)

	assert.Empty(t, s.Error)
	assert.True(t, position(t, s, "SOL").Balance.Equal(dec("2")))
	assert.True(t, position(t, s, mintT1).Balance.Equal(dec("3")))
}

func TestAggregateSkipsInvalidAddress(t *testing.T) {
	f := newAggregatorFixture()
	f.ledger.invalid["not-a-key"] = true
	f.ledger.native["not-a-key"] = lamports(9_000_000_000)
	f.ledger.native[walletA] = lamports(1_000_000_000)

	s := f.aggregate(t, "not-a-key", walletA)

	assert.Empty(t, s.Error)
	assert.Equal(t, []string{"SOL"}, assetIDs(s))
	assert.True(t, s.Tokens[0].Balance.Equal(dec("1")))
	assert.Equal(t, int32(2), f.ledger.calls.Load())
}

func TestAggregateDropsNonPositiveHoldings(t *testing.T) {
	f := newAggregatorFixture()
	f.ledger.holdings[walletA] = []entity.Holding{
		holding(mintT1, 0, 6),
		holding(mintT2, 10, 1),
		{AssetID: mintT3, RawAmount: nil, Decimals: 6},
	}
	f.oracle.prices = map[string]float64{mintT1: 5, mintT2: 5, mintT3: 5}

	s := f.aggregate(t, walletA)

	assert.Equal(t, []string{mintT2}, assetIDs(s))
	for _, ids := range f.oracle.asked {
		assert.NotContains(t, ids, mintT1)
	}
}

func TestAggregateOracleEmpty(t *testing.T) {
	f := newAggregatorFixture()
	f.ledger.native[walletA] = lamports(1_000_000_000)
	f.ledger.holdings[walletA] = []entity.Holding{holding(mintT1, 10, 0), holding(mintT2, 20, 0)}

	s := f.aggregate(t, walletA)

	assert.Empty(t, s.Error)
	require.Len(t, s.Tokens, 3)
	for _, p := range s.Tokens {
		assert.True(t, p.PriceUSD.IsZero())
		assert.True(t, p.ValueUSD.IsZero())
	}
	assert.True(t, s.TotalValueUSD.IsZero())
	// all values tie at zero, so discovery order is preserved
	assert.Equal(t, []string{"SOL", mintT1, mintT2}, assetIDs(s))
}

func TestAggregateMetadataResolution(t *testing.T) {
	f := newAggregatorFixture()
	f.ledger.holdings[walletA] = []entity.Holding{holding(mintT1, 1, 0), holding(mintT2, 1, 0)}
	f.catalog.entries = map[string]entity.AssetMetadata{
		mintT1: {Address: mintT1, Symbol: "Bonk", Name: "Bonk", Decimals: 5, LogoURI: "https://example.com/bonk.png"},
		wsol:   {Address: wsol, Symbol: "SOL", Name: "Wrapped SOL", LogoURI: "https://example.com/sol.png"},
	}

	s := f.aggregate(t, walletA)

	bonk := position(t, s, mintT1)
	assert.Equal(t, "Bonk", bonk.DisplaySymbol)
	assert.Equal(t, "https://example.com/bonk.png", bonk.IconRef)

	unknown := position(t, s, mintT2)
	assert.Equal(t, "JUPy", unknown.DisplaySymbol)
	assert.Equal(t, entity.UnknownTokenName, unknown.DisplayName)
	assert.Equal(t, int32(1), f.catalog.calls.Load())
}

func TestAggregatePricesDistinctSetOnce(t *testing.T) {
	f := newAggregatorFixture()
	f.ledger.native[walletA] = lamports(1)
	f.ledger.holdings[walletA] = []entity.Holding{holding(mintT1, 1, 0)}
	f.ledger.holdings[walletB] = []entity.Holding{holding(mintT1, 1, 0), holding(mintT2, 1, 0)}

	f.aggregate(t, walletA, walletB)

	require.Equal(t, 1, f.oracle.callCount())
	assert.ElementsMatch(t, []string{wsol, mintT1, mintT2}, f.oracle.asked[0])
	assert.NotContains(t, f.oracle.asked[0], "SOL")
}

func TestAggregateInvariants(t *testing.T) {
	f := newAggregatorFixture()
	f.ledger.native[walletA] = lamports(1_234_567_891)
	f.ledger.native[walletC] = lamports(7)
	f.ledger.holdings[walletA] = []entity.Holding{holding(mintT1, 12345, 5), holding(mintT2, 7, 6), holding(mintT3, 1, 9)}
	f.ledger.holdings[walletB] = []entity.Holding{holding(mintT2, 3_000_000, 6), holding(mintT3, 0, 9)}
	f.ledger.holdings[walletC] = []entity.Holding{holding(mintT1, 55, 5)}
	f.oracle.prices = map[string]float64{wsol: 152.37, mintT1: 0.000021, mintT2: 0.9998, mintT3: 210}

	s := f.aggregate(t, walletA, walletB, walletC)

	assert.True(t, position(t, s, mintT1).Balance.Equal(dec("0.124")))
	assert.True(t, position(t, s, mintT2).Balance.Equal(dec("3.000007")))
	assert.True(t, position(t, s, "SOL").Balance.Equal(dec("1.234567898")))

	total := decimal.Zero
	for i, p := range s.Tokens {
		assert.True(t, p.Balance.IsPositive())
		assert.True(t, p.ValueUSD.Equal(p.Balance.Mul(p.PriceUSD)))
		if i > 0 {
			assert.False(t, p.ValueUSD.GreaterThan(s.Tokens[i-1].ValueUSD))
		}
		total = total.Add(p.ValueUSD)
	}
	assert.True(t, total.Equal(s.TotalValueUSD))
}

func TestAggregatePermutationIndependent(t *testing.T) {
	build := func() *aggregatorFixture {
		f := newAggregatorFixture()
		f.ledger.native[walletA] = lamports(3_000_000_000)
		f.ledger.native[walletB] = lamports(1)
		f.ledger.holdings[walletA] = []entity.Holding{holding(mintT1, 1000, 2), holding(mintT2, 3, 0)}
		f.ledger.holdings[walletB] = []entity.Holding{holding(mintT2, 4, 0)}
		f.ledger.holdings[walletC] = []entity.Holding{holding(mintT3, 250, 1), holding(mintT1, 1, 2)}
		f.oracle.prices = map[string]float64{wsol: 140, mintT1: 0.5, mintT2: 3, mintT3: 1.25}
		return f
	}

	base := build().aggregate(t, walletA, walletB, walletC)
	permutations := [][]string{
		{walletA, walletC, walletB},
		{walletB, walletA, walletC},
		{walletB, walletC, walletA},
		{walletC, walletA, walletB},
		{walletC, walletB, walletA},
	}
	for _, wallets := range permutations {
		s := build().aggregate(t, wallets...)
		require.Equal(t, assetIDs(base), assetIDs(s))
		assert.True(t, base.TotalValueUSD.Equal(s.TotalValueUSD))
		for i := range s.Tokens {
			assert.True(t, base.Tokens[i].Balance.Equal(s.Tokens[i].Balance))
			assert.True(t, base.Tokens[i].ValueUSD.Equal(s.Tokens[i].ValueUSD))
		}
	}
}

func TestAggregateWithConcurrencyLimit(t *testing.T) {
	f := newAggregatorFixture()
	wallets := []string{walletA, walletB, walletC}
	for _, w := range wallets {
		f.ledger.native[w] = lamports(1_000_000_000)
	}
	f.oracle.prices = map[string]float64{wsol: 2}

	agg := NewPortfolioAggregator(f.provider, f.catalog, f.oracle, logger.Nop(), metrics.Nop{}, 1)
	s := agg.Aggregate(context.Background(), wallets)

	require.Len(t, s.Tokens, 1)
	assert.True(t, s.Tokens[0].Balance.Equal(dec("3")))
	assert.True(t, s.TotalValueUSD.Equal(dec("6")))
}

func TestAggregateStartsEveryWalletBeforeAwaiting(t *testing.T) {
	f := newAggregatorFixture()
	wallets := []string{walletA, walletB, walletC}
	for _, w := range wallets {
		f.ledger.native[w] = lamports(1_000_000_000)
	}
	f.oracle.prices = map[string]float64{wsol: 1}

	var entered atomic.Int32
	allIn := make(chan struct{})
	f.ledger.onNative = func(ctx context.Context) error {
		if entered.Add(1) == int32(len(wallets)) {
			close(allIn)
		}
		select {
		case <-allIn:
			return nil
		case <-time.After(2 * time.Second):
			return context.DeadlineExceeded
		}
	}

	s := f.aggregate(t, wallets...)

	require.Equal(t, int32(len(wallets)), entered.Load())
	require.Len(t, s.Tokens, 1)
	assert.True(t, s.Tokens[0].Balance.Equal(dec("3")), "a native query timed out waiting for the others")
	assert.True(t, s.TotalValueUSD.Equal(dec("3")))
}
