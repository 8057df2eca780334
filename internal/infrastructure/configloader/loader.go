package configloader

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// NetworkConfig selects the ledger network and optionally overrides its RPC endpoint.
type NetworkConfig struct {
	Identifier  string `yaml:"identifier"` // mainnet-beta or devnet
	RPCEndpoint string `yaml:"rpcEndpoint"`
	Commitment  string `yaml:"commitment"`
}

// RpcClientConfig holds configuration for the ledger RPC client.
type RpcClientConfig struct {
	ConnectTimeoutMs int64 `yaml:"connectTimeoutMs"`
	CallTimeoutMs    int64 `yaml:"callTimeoutMs"`
	RateLimit        int   `yaml:"rateLimit"` // requests per second, 0 disables throttling
	BurstLimit       int   `yaml:"burstLimit"`
}

// CatalogConfig holds configuration for the token catalog source.
type CatalogConfig struct {
	Source               string `yaml:"source"` // jupiter or file
	BaseURL              string `yaml:"baseURL"`
	FilePath             string `yaml:"filePath"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// PriceOracleConfig holds configuration for the price oracle client.
type PriceOracleConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	MaxIDsPerRequest     int    `yaml:"maxIdsPerRequest"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentQueries int `yaml:"maxConcurrentQueries"` // 0 means unlimited
}

// PortfolioServiceConfig holds configuration for the PortfolioService.
type PortfolioServiceConfig struct {
	RefreshIntervalSeconds int `yaml:"refreshIntervalSeconds"` // 0 disables the background refresh
	RefreshTimeoutSeconds  int `yaml:"refreshTimeoutSeconds"`
}

// StorageConfig holds configuration for the wallet store.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// WalletsConfig holds configuration for the wallet seed file.
type WalletsConfig struct {
	SeedFile string `yaml:"seedFile"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server           ServerConfig           `yaml:"server"`
	Logging          LoggingConfig          `yaml:"logging"`
	Network          NetworkConfig          `yaml:"network"`
	RpcClient        RpcClientConfig        `yaml:"rpcClient"`
	Catalog          CatalogConfig          `yaml:"catalog"`
	PriceOracle      PriceOracleConfig      `yaml:"priceOracle"`
	Performance      PerformanceConfig      `yaml:"performance"`
	PortfolioService PortfolioServiceConfig `yaml:"portfolioService"`
	Storage          StorageConfig          `yaml:"storage"`
	Wallets          WalletsConfig          `yaml:"wallets"`
}

// Catalog sources.
const (
	CatalogSourceJupiter = "jupiter"
	CatalogSourceFile    = "file"
)

// Load reads the YAML configuration file from the given path, applies defaults and validates it.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals raw YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 60
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 120
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Network.Identifier == "" {
		cfg.Network.Identifier = "mainnet-beta"
		logrus.Infof("Network.Identifier not set, defaulting to %s", cfg.Network.Identifier)
	}
	if cfg.Network.Commitment == "" {
		cfg.Network.Commitment = "confirmed"
	}

	if cfg.RpcClient.ConnectTimeoutMs <= 0 {
		cfg.RpcClient.ConnectTimeoutMs = 10000
	}
	if cfg.RpcClient.CallTimeoutMs <= 0 {
		cfg.RpcClient.CallTimeoutMs = 15000
	}
	if cfg.RpcClient.RateLimit > 0 && cfg.RpcClient.BurstLimit <= 0 {
		cfg.RpcClient.BurstLimit = cfg.RpcClient.RateLimit
	}

	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = CatalogSourceJupiter
	}
	if cfg.Catalog.BaseURL == "" {
		cfg.Catalog.BaseURL = "https://token.jup.ag/strict"
		logrus.Infof("Catalog.BaseURL not set, defaulting to %s", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.RequestTimeoutMillis <= 0 {
		cfg.Catalog.RequestTimeoutMillis = 10000
	}

	if cfg.PriceOracle.BaseURL == "" {
		cfg.PriceOracle.BaseURL = "https://api.jup.ag/price/v2"
		logrus.Infof("PriceOracle.BaseURL not set, defaulting to %s", cfg.PriceOracle.BaseURL)
	}
	if cfg.PriceOracle.RequestTimeoutMillis <= 0 {
		cfg.PriceOracle.RequestTimeoutMillis = 10000
	}
	if cfg.PriceOracle.MaxIDsPerRequest <= 0 {
		cfg.PriceOracle.MaxIDsPerRequest = 100 // Jupiter price API limit
		logrus.Infof("PriceOracle.MaxIDsPerRequest not set, defaulting to %d", cfg.PriceOracle.MaxIDsPerRequest)
	}

	if cfg.PortfolioService.RefreshTimeoutSeconds <= 0 {
		cfg.PortfolioService.RefreshTimeoutSeconds = 60
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/portfolio.db"
	}
}

// Validate checks enum fields and URLs.
func (cfg *Config) Validate() error {
	switch cfg.Network.Identifier {
	case "mainnet-beta", "devnet":
	default:
		return fmt.Errorf("unsupported network identifier %q", cfg.Network.Identifier)
	}
	switch cfg.Network.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("unsupported commitment %q", cfg.Network.Commitment)
	}
	if cfg.Network.RPCEndpoint != "" {
		if err := ValidateEndpoint(cfg.Network.RPCEndpoint); err != nil {
			return fmt.Errorf("network.rpcEndpoint: %w", err)
		}
	}

	switch cfg.Catalog.Source {
	case CatalogSourceJupiter:
		if err := ValidateEndpoint(cfg.Catalog.BaseURL); err != nil {
			return fmt.Errorf("catalog.baseURL: %w", err)
		}
	case CatalogSourceFile:
		if cfg.Catalog.FilePath == "" {
			return fmt.Errorf("catalog.filePath is required when catalog.source is %q", CatalogSourceFile)
		}
	default:
		return fmt.Errorf("unsupported catalog source %q", cfg.Catalog.Source)
	}

	if err := ValidateEndpoint(cfg.PriceOracle.BaseURL); err != nil {
		return fmt.Errorf("priceOracle.baseURL: %w", err)
	}
	if cfg.Performance.MaxConcurrentQueries < 0 {
		return fmt.Errorf("performance.maxConcurrentQueries must not be negative")
	}
	return nil
}

// ValidateEndpoint checks that endpoint is an absolute http(s) URL.
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL %q: missing host", endpoint)
	}
	return nil
}
