// Package config loads settings from an optional YAML file, the environment and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fd1az/solana-price-monitor/internal/asset"
)

// Source names accepted in pricing.sources.
const (
	SourceJupiter   = "jupiter"
	SourceBirdeye   = "birdeye"
	SourceCoinGecko = "coingecko"
	SourceBinance   = "binance"
)

// Selection strategies accepted in pricing.selection.strategy.
const (
	StrategyFirst           = "first"
	StrategyWeightedAverage = "weighted_average"
	StrategyMedian          = "median"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Tokens    []TokenConfig   `mapstructure:"tokens"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
	Solana    SolanaConfig    `mapstructure:"solana"`
	Pools     []PoolConfig    `mapstructure:"pools"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Health    HealthConfig    `mapstructure:"health"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	// LogFile receives logs while the TUI owns the terminal.
	LogFile string `mapstructure:"log_file"`
}

// TokenConfig is one watched token. Provider ids are optional.
type TokenConfig struct {
	Mint          string `mapstructure:"mint"`
	Symbol        string `mapstructure:"symbol"`
	Decimals      uint8  `mapstructure:"decimals"`
	CoinGeckoID   string `mapstructure:"coingecko_id"`
	BinanceSymbol string `mapstructure:"binance_symbol"`
}

type MonitorConfig struct {
	IntervalMs int `mapstructure:"interval_ms"`
	// Concurrency bounds per-cycle token fan-out; 1 keeps the cycle sequential.
	Concurrency int  `mapstructure:"concurrency"`
	TUIMode     bool `mapstructure:"-"`
}

func (c MonitorConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

type PricingConfig struct {
	Sources         []string        `mapstructure:"sources"`
	CacheTTLSeconds int             `mapstructure:"cache_ttl_seconds"`
	Selection       SelectionConfig `mapstructure:"selection"`
	Numeraire       NumeraireConfig `mapstructure:"numeraire"`
	Jupiter         SourceConfig    `mapstructure:"jupiter"`
	Birdeye         SourceConfig    `mapstructure:"birdeye"`
	CoinGecko       SourceConfig    `mapstructure:"coingecko"`
	Binance         SourceConfig    `mapstructure:"binance"`
}

func (c PricingConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

type SelectionConfig struct {
	Strategy        string             `mapstructure:"strategy"`
	MaxDeviationPct float64            `mapstructure:"max_deviation_pct"`
	Weights         map[string]float64 `mapstructure:"weights"`
}

// NumeraireConfig names the reference asset used for cross-denominated prices.
type NumeraireConfig struct {
	Mint          string  `mapstructure:"mint"`
	FallbackUSD   float64 `mapstructure:"fallback_usd"`
	BinanceSymbol string  `mapstructure:"binance_symbol"`
	CoinGeckoID   string  `mapstructure:"coingecko_id"`
	// QuoteTTLSeconds caches the numeraire quote inside each source.
	QuoteTTLSeconds int `mapstructure:"quote_ttl_seconds"`
}

func (c NumeraireConfig) QuoteTTL() time.Duration {
	return time.Duration(c.QuoteTTLSeconds) * time.Second
}

type SourceConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

type ArbitrageConfig struct {
	ThresholdPct float64 `mapstructure:"threshold_pct"`
}

type SolanaConfig struct {
	RPCURL            string        `mapstructure:"rpc_url"`
	Commitment        string        `mapstructure:"commitment"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// PoolConfig is one venue pool for a token, described by its two vault accounts.
type PoolConfig struct {
	Mint       string `mapstructure:"mint"`
	Venue      string `mapstructure:"venue"`
	Pool       string `mapstructure:"pool"`
	BaseVault  string `mapstructure:"base_vault"`
	QuoteVault string `mapstructure:"quote_vault"`
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type TelemetryConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	TraceProvider string  `mapstructure:"trace_provider"`
	OTLPEndpoint  string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders   string  `mapstructure:"otlp_headers"`
	OTLPInsecure  bool    `mapstructure:"otlp_insecure"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
	MetricsPort   int     `mapstructure:"metrics_port"`
}

type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
	// MaxCycleAge marks the monitor unhealthy when no cycle finished within it.
	MaxCycleAge time.Duration `mapstructure:"max_cycle_age"`
}

// Load reads configPath (or ./config.yaml, ./config/config.yaml when empty),
// overlays SPM_* environment variables and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SPM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("app.log_level", "SPM_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("app.environment", "SPM_ENVIRONMENT", "ENVIRONMENT")

	_ = v.BindEnv("pricing.jupiter.api_key", "SPM_JUPITER_API_KEY", "JUPITER_API_KEY")
	_ = v.BindEnv("pricing.birdeye.api_key", "SPM_BIRDEYE_API_KEY", "BIRDEYE_API_KEY")
	_ = v.BindEnv("pricing.coingecko.api_key", "SPM_COINGECKO_API_KEY", "COINGECKO_API_KEY")

	_ = v.BindEnv("solana.rpc_url", "SPM_SOLANA_RPC_URL", "SOLANA_RPC_URL")

	_ = v.BindEnv("redis.addr", "SPM_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "SPM_REDIS_PASSWORD", "REDIS_PASSWORD")

	_ = v.BindEnv("telemetry.enabled", "SPM_OTEL_ENABLED", "OTEL_ENABLED")
	_ = v.BindEnv("telemetry.service_name", "SPM_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	_ = v.BindEnv("telemetry.otlp_endpoint", "SPM_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = v.BindEnv("telemetry.otlp_headers", "SPM_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "solana-price-monitor")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "price-monitor.log")

	v.SetDefault("tokens", []map[string]any{
		{"mint": string(asset.MintJUP), "symbol": "JUP", "decimals": 6, "coingecko_id": "jupiter-exchange-solana"},
		{"mint": string(asset.MintBONK), "symbol": "BONK", "decimals": 5, "coingecko_id": "bonk", "binance_symbol": "BONKUSDT"},
	})

	v.SetDefault("monitor.interval_ms", 2000)
	v.SetDefault("monitor.concurrency", 1)

	v.SetDefault("pricing.sources", []string{SourceJupiter})
	v.SetDefault("pricing.cache_ttl_seconds", 30)
	v.SetDefault("pricing.selection.strategy", StrategyFirst)
	v.SetDefault("pricing.selection.max_deviation_pct", 5.0)

	v.SetDefault("pricing.numeraire.mint", string(asset.MintWrappedSOL))
	v.SetDefault("pricing.numeraire.fallback_usd", 150.0)
	v.SetDefault("pricing.numeraire.binance_symbol", "SOLUSDT")
	v.SetDefault("pricing.numeraire.coingecko_id", "solana")
	v.SetDefault("pricing.numeraire.quote_ttl_seconds", 10)

	v.SetDefault("pricing.jupiter.base_url", "https://api.jup.ag")
	v.SetDefault("pricing.jupiter.timeout", "5s")
	v.SetDefault("pricing.jupiter.requests_per_minute", 600)

	v.SetDefault("pricing.birdeye.base_url", "https://public-api.birdeye.so")
	v.SetDefault("pricing.birdeye.timeout", "5s")
	v.SetDefault("pricing.birdeye.requests_per_minute", 100)

	v.SetDefault("pricing.coingecko.base_url", "https://api.coingecko.com")
	v.SetDefault("pricing.coingecko.timeout", "5s")
	v.SetDefault("pricing.coingecko.requests_per_minute", 30)

	v.SetDefault("pricing.binance.base_url", "https://api.binance.com")
	v.SetDefault("pricing.binance.timeout", "5s")
	v.SetDefault("pricing.binance.requests_per_minute", 1200)

	v.SetDefault("arbitrage.threshold_pct", 0.5)

	v.SetDefault("solana.rpc_url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("solana.commitment", "confirmed")
	v.SetDefault("solana.timeout", "10s")
	v.SetDefault("solana.requests_per_second", 10)
	v.SetDefault("solana.burst", 5)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.key_prefix", "price:")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "solana-price-monitor")
	v.SetDefault("telemetry.trace_provider", "none")
	v.SetDefault("telemetry.metrics_port", 9090)

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", 8081)
	v.SetDefault("health.max_cycle_age", "1m")
}

// Validate checks ranges and cross references. It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Tokens) == 0 {
		return errors.New("tokens cannot be empty")
	}
	seen := make(map[string]bool, len(c.Tokens))
	for i, t := range c.Tokens {
		if _, err := asset.ParseMint(t.Mint); err != nil {
			return fmt.Errorf("tokens[%d]: %w", i, err)
		}
		if seen[t.Mint] {
			return fmt.Errorf("tokens[%d]: duplicate mint %s", i, t.Mint)
		}
		seen[t.Mint] = true
	}

	if c.Monitor.IntervalMs <= 0 {
		return fmt.Errorf("monitor.interval_ms must be positive, got %d", c.Monitor.IntervalMs)
	}
	if c.Monitor.Concurrency < 1 {
		return fmt.Errorf("monitor.concurrency must be at least 1, got %d", c.Monitor.Concurrency)
	}

	if c.Pricing.CacheTTLSeconds <= 0 {
		return fmt.Errorf("pricing.cache_ttl_seconds must be positive, got %d", c.Pricing.CacheTTLSeconds)
	}
	known := map[string]bool{SourceJupiter: true, SourceBirdeye: true, SourceCoinGecko: true, SourceBinance: true}
	enabled := make(map[string]bool, len(c.Pricing.Sources))
	for _, s := range c.Pricing.Sources {
		if !known[s] {
			return fmt.Errorf("pricing.sources: unknown source %q", s)
		}
		if enabled[s] {
			return fmt.Errorf("pricing.sources: %q listed twice", s)
		}
		enabled[s] = true
	}
	switch c.Pricing.Selection.Strategy {
	case StrategyFirst, StrategyWeightedAverage, StrategyMedian:
	default:
		return fmt.Errorf("pricing.selection.strategy: unknown strategy %q", c.Pricing.Selection.Strategy)
	}
	if c.Pricing.Selection.MaxDeviationPct <= 0 {
		return fmt.Errorf("pricing.selection.max_deviation_pct must be positive")
	}
	if _, err := asset.ParseMint(c.Pricing.Numeraire.Mint); err != nil {
		return fmt.Errorf("pricing.numeraire.mint: %w", err)
	}
	if c.Pricing.Numeraire.FallbackUSD <= 0 {
		return fmt.Errorf("pricing.numeraire.fallback_usd must be positive")
	}

	if c.Arbitrage.ThresholdPct < 0 {
		return fmt.Errorf("arbitrage.threshold_pct cannot be negative")
	}

	if len(c.Pools) > 0 && c.Solana.RPCURL == "" {
		return errors.New("solana.rpc_url is required when pools are configured")
	}
	for i, p := range c.Pools {
		if !seen[p.Mint] {
			return fmt.Errorf("pools[%d]: mint %q is not in tokens", i, p.Mint)
		}
		if p.Venue == "" {
			return fmt.Errorf("pools[%d]: venue is required", i)
		}
		if p.BaseVault == "" || p.QuoteVault == "" {
			return fmt.Errorf("pools[%d]: base_vault and quote_vault are required", i)
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}

	return nil
}

// WatchedMints returns token mints in configuration order.
func (c *Config) WatchedMints() []string {
	mints := make([]string, len(c.Tokens))
	for i, t := range c.Tokens {
		mints[i] = t.Mint
	}
	return mints
}

// Token returns the configuration for mint.
func (c *Config) Token(mint string) (TokenConfig, bool) {
	for _, t := range c.Tokens {
		if t.Mint == mint {
			return t, true
		}
	}
	return TokenConfig{}, false
}
