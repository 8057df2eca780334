package service

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"

	"portfolio_aggregator/internal/app/port"
	"portfolio_aggregator/internal/domain/entity"
)

const (
	walletA = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	walletB = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	walletC = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"

	mintT1 = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	mintT2 = "JUPyiwrYJFskUPiHa7hkeR8VUtkqj20HMNtzP2F2z5v"
	mintT3 = "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So"
)

var errBoom = errors.New("boom")

func testNetwork() entity.NetworkDefinition {
	return entity.NetworkDefinition{
		Name:            "Solana",
		Identifier:      "mainnet-beta",
		NativeAssetID:   "SOL",
		NativeSymbol:    "SOL",
		NativeName:      "Solana",
		NativePricingID: "So11111111111111111111111111111111111111112",
		Decimals:        9,
	}
}

func lamports(v int64) *big.Int { return big.NewInt(v) }

func holding(mint string, raw int64, decimals uint8) entity.Holding {
	return entity.Holding{AssetID: mint, RawAmount: big.NewInt(raw), Decimals: decimals}
}

// fakeLedger serves canned balances per address.
type fakeLedger struct {
	native      map[string]*big.Int
	holdings    map[string][]entity.Holding
	nativeErr   map[string]error
	holdingsErr map[string]error
	invalid     map[string]bool
	calls       atomic.Int32
	// onNative runs on entry to GetNativeBalance when set.
	onNative func(ctx context.Context) error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		native:      map[string]*big.Int{},
		holdings:    map[string][]entity.Holding{},
		nativeErr:   map[string]error{},
		holdingsErr: map[string]error{},
		invalid:     map[string]bool{},
	}
}

func (f *fakeLedger) ValidateAddress(address string) error {
	if f.invalid[address] {
		return errors.New("invalid address")
	}
	return nil
}

func (f *fakeLedger) GetNativeBalance(ctx context.Context, address string) (*big.Int, error) {
	f.calls.Add(1)
	if f.onNative != nil {
		if err := f.onNative(ctx); err != nil {
			return nil, err
		}
	}
	if err := f.nativeErr[address]; err != nil {
		return nil, err
	}
	if v, ok := f.native[address]; ok {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

func (f *fakeLedger) GetHoldings(_ context.Context, address string) ([]entity.Holding, error) {
	f.calls.Add(1)
	if err := f.holdingsErr[address]; err != nil {
		return nil, err
	}
	return f.holdings[address], nil
}

func (f *fakeLedger) Definition() entity.NetworkDefinition { return testNetwork() }

// fakeProvider hands out a fixed ledger client or a fixed error.
type fakeProvider struct {
	mu       sync.Mutex
	client   port.LedgerClient
	err      error
	endpoint string
	gets     int
	sets     []string
}

func (p *fakeProvider) GetClient(context.Context) (port.LedgerClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gets++
	if p.err != nil {
		return nil, p.err
	}
	return p.client, nil
}

func (p *fakeProvider) Endpoint() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.endpoint
}

func (p *fakeProvider) SetEndpoint(endpoint string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endpoint = endpoint
	p.sets = append(p.sets, endpoint)
}

func (p *fakeProvider) getCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gets
}

type fakeCatalog struct {
	entries map[string]entity.AssetMetadata
	calls   atomic.Int32
}

func (c *fakeCatalog) Resolve(context.Context) map[string]entity.AssetMetadata {
	c.calls.Add(1)
	if c.entries == nil {
		return map[string]entity.AssetMetadata{}
	}
	return c.entries
}

type fakeOracle struct {
	prices map[string]float64
	mu     sync.Mutex
	asked  [][]string
}

func (o *fakeOracle) Quote(_ context.Context, ids []string) map[string]float64 {
	o.mu.Lock()
	o.asked = append(o.asked, append([]string(nil), ids...))
	o.mu.Unlock()
	out := map[string]float64{}
	for _, id := range ids {
		if p, ok := o.prices[id]; ok {
			out[id] = p
		}
	}
	return out
}

func (o *fakeOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.asked)
}

// fakeTokenList is a port.TokenListSource with a call counter.
type fakeTokenList struct {
	tokens []entity.AssetMetadata
	err    error
	calls  atomic.Int32
	block  chan struct{}
}

func (f *fakeTokenList) FetchTokenList(ctx context.Context) ([]entity.AssetMetadata, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens, nil
}

// fakeQuoteClient is a port.PriceQuoteClient that records every batch.
type fakeQuoteClient struct {
	prices  map[string]float64
	failFor map[string]bool
	mu      sync.Mutex
	batches [][]string
}

func (f *fakeQuoteClient) GetPrices(_ context.Context, ids []string) (map[string]float64, error) {
	f.mu.Lock()
	f.batches = append(f.batches, append([]string(nil), ids...))
	f.mu.Unlock()
	out := map[string]float64{}
	for _, id := range ids {
		if f.failFor[id] {
			return nil, errBoom
		}
		if p, ok := f.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}
