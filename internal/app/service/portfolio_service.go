package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"portfolio_aggregator/internal/app/port"
	"portfolio_aggregator/internal/domain/entity"
	"portfolio_aggregator/internal/infrastructure/configloader"

	"github.com/pkg/errors"
)

// SettingRPCEndpoint is the settings key holding the custom RPC endpoint.
const SettingRPCEndpoint = "rpc_endpoint"

// WalletLoadFailureMessage is set on the snapshot when the tracked wallet list cannot be read.
const WalletLoadFailureMessage = "Failed to load tracked wallets."

var (
	ErrInvalidWalletAddress = errors.New("Invalid Solana address.")
	ErrWalletAlreadyTracked = errors.New("Wallet already added.")
	ErrWalletNotFound       = errors.New("Wallet not found.")
	ErrInvalidEndpoint      = errors.New("Invalid RPC endpoint.")
)

// PortfolioServiceImpl implements port.PortfolioService. It owns the published snapshot and
// makes sure a run that finishes late never replaces the result of a newer run.
type PortfolioServiceImpl struct {
	aggregator     port.PortfolioAggregator
	store          port.WalletStore
	clientProvider port.LedgerClientProvider
	validator      port.AddressValidator
	logger         port.Logger
	refreshTimeout time.Duration

	generation atomic.Uint64
	inFlight   atomic.Int32

	mu           sync.RWMutex
	current      entity.PortfolioSnapshot
	publishedGen uint64

	background sync.WaitGroup
}

// NewPortfolioService creates a new PortfolioServiceImpl. refreshTimeout bounds background
// refreshes triggered by wallet or endpoint changes.
func NewPortfolioService(
	agg port.PortfolioAggregator,
	store port.WalletStore,
	cp port.LedgerClientProvider,
	validator port.AddressValidator,
	l port.Logger,
	refreshTimeout time.Duration,
) *PortfolioServiceImpl {
	if refreshTimeout <= 0 {
		refreshTimeout = time.Minute
	}
	return &PortfolioServiceImpl{
		aggregator:     agg,
		store:          store,
		clientProvider: cp,
		validator:      validator,
		logger:         l,
		refreshTimeout: refreshTimeout,
		current:        entity.EmptySnapshot(),
	}
}

// Refresh runs a full aggregation over the stored wallets and publishes the result
// unless a newer run has already published.
func (s *PortfolioServiceImpl) Refresh(ctx context.Context) entity.PortfolioSnapshot {
	gen := s.generation.Add(1)
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	var snapshot entity.PortfolioSnapshot
	wallets, err := s.store.ListWallets(ctx)
	if err != nil {
		s.logger.Error("Failed to list wallets for refresh", "error", err)
		snapshot = entity.EmptySnapshot()
		snapshot.Error = WalletLoadFailureMessage
		snapshot.GeneratedAt = time.Now().UTC()
	} else {
		addresses := make([]string, 0, len(wallets))
		for _, w := range wallets {
			addresses = append(addresses, w.Address)
		}
		snapshot = s.aggregator.Aggregate(ctx, addresses)
	}

	s.mu.Lock()
	if gen > s.publishedGen {
		s.current = snapshot
		s.publishedGen = gen
	} else {
		s.logger.Debug("Discarding stale portfolio result", "generation", gen, "published", s.publishedGen)
	}
	s.mu.Unlock()

	return snapshot.WithLoading(false)
}

// Current returns the last published snapshot with the loading flag reflecting in-flight runs.
func (s *PortfolioServiceImpl) Current() entity.PortfolioSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.WithLoading(s.Loading())
}

// Loading reports whether at least one refresh is in flight.
func (s *PortfolioServiceImpl) Loading() bool {
	return s.inFlight.Load() > 0
}

// Run refreshes immediately and then every interval until ctx is cancelled.
// A non-positive interval performs the initial refresh only.
func (s *PortfolioServiceImpl) Run(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Portfolio refresh loop stopped")
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// TriggerRefresh starts a refresh in the background.
func (s *PortfolioServiceImpl) TriggerRefresh() {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
		defer cancel()
		s.Refresh(ctx)
	}()
}

// Wait blocks until background refreshes started by TriggerRefresh have finished.
func (s *PortfolioServiceImpl) Wait() {
	s.background.Wait()
}

// Wallets returns the tracked wallets.
func (s *PortfolioServiceImpl) Wallets(ctx context.Context) ([]entity.Wallet, error) {
	wallets, err := s.store.ListWallets(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list wallets")
	}
	return wallets, nil
}

// AddWallet validates and stores address, then refreshes in the background.
func (s *PortfolioServiceImpl) AddWallet(ctx context.Context, address string) (entity.Wallet, error) {
	wallet, err := s.addWallet(ctx, address)
	if err != nil {
		return entity.Wallet{}, err
	}
	s.logger.Info("Wallet added", "address", wallet.Address)
	s.TriggerRefresh()
	return wallet, nil
}

func (s *PortfolioServiceImpl) addWallet(ctx context.Context, address string) (entity.Wallet, error) {
	address = strings.TrimSpace(address)
	if err := s.validator.ValidateAddress(address); err != nil {
		return entity.Wallet{}, errors.Wrap(ErrInvalidWalletAddress, err.Error())
	}

	wallet := entity.Wallet{Address: address, AddedAt: time.Now().UTC()}
	added, err := s.store.AddWallet(ctx, wallet)
	if err != nil {
		return entity.Wallet{}, errors.Wrap(err, "store wallet")
	}
	if !added {
		return entity.Wallet{}, ErrWalletAlreadyTracked
	}
	return wallet, nil
}

// RemoveWallet stops tracking address and refreshes in the background.
func (s *PortfolioServiceImpl) RemoveWallet(ctx context.Context, address string) error {
	address = strings.TrimSpace(address)
	exists, err := s.store.HasWallet(ctx, address)
	if err != nil {
		return errors.Wrap(err, "check wallet")
	}
	if !exists {
		return ErrWalletNotFound
	}
	if err := s.store.RemoveWallet(ctx, address); err != nil {
		return errors.Wrap(err, "remove wallet")
	}
	s.logger.Info("Wallet removed", "address", address)
	s.TriggerRefresh()
	return nil
}

// SeedWallets adds wallets from a static provider. Invalid and already tracked entries are skipped.
func (s *PortfolioServiceImpl) SeedWallets(ctx context.Context, provider port.WalletProvider) (int, error) {
	wallets, err := provider.GetWallets()
	if err != nil {
		return 0, errors.Wrap(err, "load seed wallets")
	}

	added := 0
	for _, w := range wallets {
		_, err := s.addWallet(ctx, w.Address)
		switch {
		case err == nil:
			added++
		case errors.Is(err, ErrWalletAlreadyTracked):
		case errors.Is(err, ErrInvalidWalletAddress):
			s.logger.Warn("Skipping invalid seed wallet", "address", w.Address)
		default:
			return added, err
		}
	}
	if added > 0 {
		s.logger.Info("Seed wallets added", "count", added)
	}
	return added, nil
}

// Endpoint returns the persisted custom RPC endpoint, or "" when none is set.
func (s *PortfolioServiceImpl) Endpoint(ctx context.Context) (string, error) {
	endpoint, ok, err := s.store.GetSetting(ctx, SettingRPCEndpoint)
	if err != nil {
		return "", errors.Wrap(err, "read endpoint setting")
	}
	if !ok {
		return "", nil
	}
	return endpoint, nil
}

// ActiveEndpoint returns the endpoint the ledger client provider currently targets.
func (s *PortfolioServiceImpl) ActiveEndpoint() string {
	return s.clientProvider.Endpoint()
}

// SetEndpoint persists a custom RPC endpoint, switches the ledger client to it and refreshes.
// An empty endpoint clears the setting and restores the network default.
func (s *PortfolioServiceImpl) SetEndpoint(ctx context.Context, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		if err := s.store.DeleteSetting(ctx, SettingRPCEndpoint); err != nil {
			return errors.Wrap(err, "clear endpoint setting")
		}
	} else {
		if err := configloader.ValidateEndpoint(endpoint); err != nil {
			return errors.Wrap(ErrInvalidEndpoint, err.Error())
		}
		if err := s.store.SetSetting(ctx, SettingRPCEndpoint, endpoint); err != nil {
			return errors.Wrap(err, "store endpoint setting")
		}
	}

	s.clientProvider.SetEndpoint(endpoint)
	s.logger.Info("RPC endpoint changed", "endpoint", s.clientProvider.Endpoint())
	s.TriggerRefresh()
	return nil
}

// RestoreEndpoint applies a persisted custom endpoint to the client provider.
func (s *PortfolioServiceImpl) RestoreEndpoint(ctx context.Context) error {
	endpoint, err := s.Endpoint(ctx)
	if err != nil {
		return err
	}
	if endpoint != "" {
		s.clientProvider.SetEndpoint(endpoint)
		s.logger.Info("Using custom RPC endpoint", "endpoint", endpoint)
	}
	return nil
}
