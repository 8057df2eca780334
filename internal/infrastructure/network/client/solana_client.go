package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"portfolio_aggregator/internal/app/port"
	"portfolio_aggregator/internal/domain/entity"
	wire "portfolio_aggregator/internal/entity"
	"portfolio_aggregator/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/rpc"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SolanaClient implements port.LedgerClient over the Solana JSON-RPC API.
type SolanaClient struct {
	rpcClient      *rpc.Client
	netDef         entity.NetworkDefinition
	endpoint       string
	commitment     string
	rpcCallTimeout time.Duration
	limiter        *rate.Limiter
	logger         port.Logger
}

// NewSolanaClient dials endpoint. The dial itself does not touch the network for HTTP endpoints;
// use Ping to check reachability.
func NewSolanaClient(
	ctx context.Context,
	netDef entity.NetworkDefinition,
	endpoint string,
	commitment string,
	rpcCallTimeout time.Duration,
	limiter *rate.Limiter,
	logger port.Logger,
) (*SolanaClient, error) {
	rpcClient, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC %s: %w", endpoint, err)
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &SolanaClient{
		rpcClient:      rpcClient,
		netDef:         netDef,
		endpoint:       endpoint,
		commitment:     commitment,
		rpcCallTimeout: rpcCallTimeout,
		limiter:        limiter,
		logger:         logger,
	}, nil
}

// Definition returns the network definition associated with this client.
func (c *SolanaClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Endpoint returns the RPC URL this client talks to.
func (c *SolanaClient) Endpoint() string {
	return c.endpoint
}

// Close releases the underlying RPC client.
func (c *SolanaClient) Close() {
	c.rpcClient.Close()
}

// ValidateAddress checks that address is a base58 public key.
func (c *SolanaClient) ValidateAddress(address string) error {
	return utils.ValidateSolanaAddress(address)
}

// Ping calls getVersion and returns the node version.
func (c *SolanaClient) Ping(ctx context.Context) (string, error) {
	var res wire.VersionResult
	if err := c.call(ctx, &res, "getVersion"); err != nil {
		return "", err
	}
	return res.SolanaCore, nil
}

// GetNativeBalance returns the lamport balance of address.
func (c *SolanaClient) GetNativeBalance(ctx context.Context, address string) (*big.Int, error) {
	var res wire.BalanceResult
	if err := c.call(ctx, &res, "getBalance", address, c.commitmentConfig()); err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(res.Value), nil
}

// GetHoldings lists the token accounts owned by address under every configured token program.
// A program whose query fails is skipped; an error is returned only when all of them fail.
func (c *SolanaClient) GetHoldings(ctx context.Context, address string) ([]entity.Holding, error) {
	var holdings []entity.Holding
	var errs []error
	for _, programID := range c.netDef.TokenProgramIDs {
		accounts, err := c.tokenAccountsByOwner(ctx, address, programID)
		if err != nil {
			errs = append(errs, err)
			c.logger.Warn("Token account query failed", "program", programID, "address", utils.ShortenAddress(address, 4), "error", err)
			continue
		}
		holdings = append(holdings, accounts...)
	}
	if len(errs) > 0 && len(errs) == len(c.netDef.TokenProgramIDs) {
		return nil, errors.Join(errs...)
	}
	return holdings, nil
}

func (c *SolanaClient) tokenAccountsByOwner(ctx context.Context, owner, programID string) ([]entity.Holding, error) {
	var res wire.TokenAccountsResult
	filter := map[string]string{"programId": programID}
	opts := map[string]string{"encoding": "jsonParsed", "commitment": c.commitment}
	if err := c.call(ctx, &res, "getTokenAccountsByOwner", owner, filter, opts); err != nil {
		return nil, err
	}

	holdings := make([]entity.Holding, 0, len(res.Value))
	for _, acc := range res.Value {
		h, ok := parseHolding(acc)
		if !ok {
			c.logger.Debug("Skipping unparseable token account", "account", acc.Pubkey)
			continue
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

func parseHolding(acc wire.KeyedTokenAccount) (entity.Holding, bool) {
	var data wire.ParsedTokenAccountData
	if err := json.Unmarshal(acc.Account.Data, &data); err != nil {
		return entity.Holding{}, false
	}
	info := data.Parsed.Info
	if info.Mint == "" || info.TokenAmount.Decimals < 0 || info.TokenAmount.Decimals > 255 {
		return entity.Holding{}, false
	}
	amount, ok := utils.ParseRawAmount(info.TokenAmount.Amount)
	if !ok {
		return entity.Holding{}, false
	}
	return entity.Holding{
		AssetID:   info.Mint,
		RawAmount: amount,
		Decimals:  uint8(info.TokenAmount.Decimals),
	}, true
}

func (c *SolanaClient) commitmentConfig() map[string]string {
	return map[string]string{"commitment": c.commitment}
}

// call waits for the rate limiter and performs one RPC call bounded by rpcCallTimeout.
func (c *SolanaClient) call(ctx context.Context, result any, method string, args ...any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limiter: %w", method, err)
	}

	callCtx := ctx
	if c.rpcCallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.rpcCallTimeout)
		defer cancel()
	}

	if err := c.rpcClient.CallContext(callCtx, result, method, args...); err != nil {
		if strings.Contains(err.Error(), "429") {
			return fmt.Errorf("%s: rate limited by %s: %w", method, c.endpoint, err)
		}
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}
