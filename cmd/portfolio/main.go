package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio_aggregator/internal/app/port"
	"portfolio_aggregator/internal/app/service"
	jupiter "portfolio_aggregator/internal/client"
	"portfolio_aggregator/internal/infrastructure/configloader"
	clientprovider "portfolio_aggregator/internal/infrastructure/network/client"
	networkdefinition "portfolio_aggregator/internal/infrastructure/network/definition"
	"portfolio_aggregator/internal/infrastructure/restapi"
	"portfolio_aggregator/internal/infrastructure/tokenloader"
	"portfolio_aggregator/internal/infrastructure/walletloader"
	"portfolio_aggregator/internal/infrastructure/walletstore/sqlite"
	"portfolio_aggregator/internal/pkg/logger"
	"portfolio_aggregator/internal/pkg/metrics"
	"portfolio_aggregator/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type addressValidator struct{}

func (addressValidator) ValidateAddress(address string) error {
	return utils.ValidateSolanaAddress(address)
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yml"
	}
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	appLogger := logger.NewSlogAdapter(nil)
	logger.Info("Portfolio aggregator starting", "config", cfgPath)

	netDef, err := networkdefinition.ByIdentifier(cfg.Network.Identifier)
	if err != nil {
		logger.Fatal("Unsupported network", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(reg)

	store, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		logger.Fatal("Failed to open wallet store", "path", cfg.Storage.Path, "error", err)
	}
	defer store.Close()

	clientProvider := clientprovider.NewSolanaClientProvider(cfg, netDef, logger.With(appLogger, "component", "ledger"))

	var tokenSource port.TokenListSource
	switch cfg.Catalog.Source {
	case configloader.CatalogSourceFile:
		tokenSource = tokenloader.NewTokenLoader(cfg.Catalog.FilePath, appLogger.Info, appLogger.Warn)
	default:
		tokenSource = jupiter.NewJupiterTokenClient(
			cfg.Catalog.BaseURL,
			time.Duration(cfg.Catalog.RequestTimeoutMillis)*time.Millisecond,
			zapLogger,
		)
	}
	catalog := service.NewAssetCatalogService(tokenSource, logger.With(appLogger, "component", "catalog"), recorder,
		time.Duration(cfg.Catalog.RequestTimeoutMillis)*time.Millisecond)

	priceClient := jupiter.NewJupiterPriceClient(
		cfg.PriceOracle.BaseURL,
		time.Duration(cfg.PriceOracle.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
		cfg.PriceOracle.MaxIDsPerRequest,
	)
	oracle := service.NewTokenPriceService(priceClient, logger.With(appLogger, "component", "oracle"), recorder, priceClient.MaxIDsPerRequest())

	aggregator := service.NewPortfolioAggregator(
		clientProvider,
		catalog,
		oracle,
		logger.With(appLogger, "component", "aggregator"),
		recorder,
		cfg.Performance.MaxConcurrentQueries,
	)

	portfolioService := service.NewPortfolioService(
		aggregator,
		store,
		clientProvider,
		addressValidator{},
		logger.With(appLogger, "component", "portfolio"),
		time.Duration(cfg.PortfolioService.RefreshTimeoutSeconds)*time.Second,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := portfolioService.RestoreEndpoint(ctx); err != nil {
		logger.Error("Failed to restore custom RPC endpoint", "error", err)
	}
	if cfg.Wallets.SeedFile != "" {
		seed := walletloader.NewWalletFileLoader(cfg.Wallets.SeedFile, appLogger.Info)
		if _, err := portfolioService.SeedWallets(ctx, seed); err != nil {
			logger.Warn("Failed to seed wallets", "file", cfg.Wallets.SeedFile, "error", err)
		}
	}

	go portfolioService.Run(ctx, time.Duration(cfg.PortfolioService.RefreshIntervalSeconds)*time.Second)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := restapi.NewPortfolioHandler(portfolioService, zapLogger)
	router := restapi.SetupRouter(handler, zapLogger.Named("http"), reg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("addr", srv.Addr), zap.String("network", netDef.Identifier))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	portfolioService.Wait()

	zapLogger.Info("Server exiting")
}
