package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"portfolio_aggregator/internal/app/port"
	"portfolio_aggregator/internal/domain/entity"
	"portfolio_aggregator/internal/infrastructure/configloader"

	"golang.org/x/time/rate"
)

const (
	defaultProviderConnectionTimeout = 10 * time.Second
)

// solanaClientProvider implements port.LedgerClientProvider. It keeps one client for the
// current endpoint and rebuilds it when the endpoint changes.
type solanaClientProvider struct {
	mu                sync.Mutex
	netDef            entity.NetworkDefinition
	customEndpoint    string
	client            *SolanaClient
	commitment        string
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
	limiter           *rate.Limiter
	logger            port.Logger
}

// NewSolanaClientProvider creates the provider for netDef. A non-empty cfg.Network.RPCEndpoint
// overrides the network's public endpoint.
func NewSolanaClientProvider(cfg *configloader.Config, netDef entity.NetworkDefinition, logger port.Logger) port.LedgerClientProvider {
	connectionTimeout := time.Duration(cfg.RpcClient.ConnectTimeoutMs) * time.Millisecond
	if connectionTimeout <= 0 {
		connectionTimeout = defaultProviderConnectionTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RpcClient.RateLimit > 0 {
		burst := cfg.RpcClient.BurstLimit
		if burst <= 0 {
			burst = cfg.RpcClient.RateLimit
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RpcClient.RateLimit), burst)
	}

	return &solanaClientProvider{
		netDef:            netDef,
		customEndpoint:    strings.TrimSpace(cfg.Network.RPCEndpoint),
		commitment:        cfg.Network.Commitment,
		connectionTimeout: connectionTimeout,
		rpcCallTimeout:    time.Duration(cfg.RpcClient.CallTimeoutMs) * time.Millisecond,
		limiter:           limiter,
		logger:            logger,
	}
}

// GetClient returns the cached client or dials and probes a new one. A failed probe is
// not cached, so the next call tries again. The dial runs without holding the lock.
func (p *solanaClientProvider) GetClient(ctx context.Context) (port.LedgerClient, error) {
	p.mu.Lock()
	endpoint := p.endpointLocked()
	if p.client != nil && p.client.Endpoint() == endpoint {
		cached := p.client
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	client, version, err := p.dial(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if current := p.endpointLocked(); current != endpoint {
		client.Close()
		return nil, fmt.Errorf("rpc endpoint changed from %s to %s while connecting", endpoint, current)
	}
	if p.client != nil && p.client.Endpoint() == endpoint {
		// A concurrent dial to the same endpoint won.
		client.Close()
		return p.client, nil
	}
	if p.client != nil {
		p.client.Close()
	}
	p.client = client
	p.logger.Info("Successfully created and cached new Solana client", "rpc", endpoint, "version", version)
	return client, nil
}

func (p *solanaClientProvider) dial(ctx context.Context, endpoint string) (*SolanaClient, string, error) {
	p.logger.Info("Creating new Solana client", "network", p.netDef.Name, "rpc", endpoint)
	dialCtx, cancel := context.WithTimeout(ctx, p.connectionTimeout)
	defer cancel()

	client, err := NewSolanaClient(dialCtx, p.netDef, endpoint, p.commitment, p.rpcCallTimeout, p.limiter, p.logger)
	if err != nil {
		p.logger.Error("Failed to create Solana client", "rpc", endpoint, "error", err)
		return nil, "", err
	}
	version, err := client.Ping(dialCtx)
	if err != nil {
		client.Close()
		p.logger.Error("Solana RPC endpoint unreachable", "rpc", endpoint, "error", err)
		return nil, "", fmt.Errorf("rpc endpoint %s unreachable: %w", endpoint, err)
	}
	return client, version, nil
}

// Endpoint returns the endpoint the next client will use.
func (p *solanaClientProvider) Endpoint() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.endpointLocked()
}

// SetEndpoint switches to endpoint, or back to the network default when it is empty.
// The cached client is dropped so the next GetClient builds a fresh one.
func (p *solanaClientProvider) SetEndpoint(endpoint string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.customEndpoint = strings.TrimSpace(endpoint)
	if p.client != nil && p.client.Endpoint() != p.endpointLocked() {
		p.client.Close()
		p.client = nil
	}
}

func (p *solanaClientProvider) endpointLocked() string {
	if p.customEndpoint != "" {
		return p.customEndpoint
	}
	return p.netDef.PrimaryRPCURL
}
