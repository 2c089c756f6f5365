// Package pricing implements the pricing bounded context: price sources,
// selection, the price cache and the resolver.
package pricing

import (
	"context"
	"time"

	"github.com/fd1az/solana-price-monitor/business/pricing/app"
	pricingDI "github.com/fd1az/solana-price-monitor/business/pricing/di"
	"github.com/fd1az/solana-price-monitor/business/pricing/domain"
	"github.com/fd1az/solana-price-monitor/business/pricing/infra/binance"
	"github.com/fd1az/solana-price-monitor/business/pricing/infra/birdeye"
	"github.com/fd1az/solana-price-monitor/business/pricing/infra/coingecko"
	"github.com/fd1az/solana-price-monitor/business/pricing/infra/jupiter"
	"github.com/fd1az/solana-price-monitor/business/pricing/infra/redis"
	"github.com/fd1az/solana-price-monitor/internal/apperror"
	"github.com/fd1az/solana-price-monitor/internal/config"
	"github.com/fd1az/solana-price-monitor/internal/di"
	"github.com/fd1az/solana-price-monitor/internal/logger"
	"github.com/fd1az/solana-price-monitor/internal/monolith"
)

const redisConnectTimeout = 5 * time.Second

// Module implements the pricing bounded context.
type Module struct {
	resolver  *app.Resolver
	numeraire *app.NumeraireService
}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// The cache is owned by the resolver and never exposed publicly.
	di.RegisterToken(c, pricingDI.PriceCache, func(sr di.ServiceRegistry) *app.PriceCache {
		cfg := sr.Get("config").(*config.Config)
		return app.NewPriceCache(cfg.Pricing.CacheTTL(), time.Now)
	})

	di.RegisterToken(c, pricingDI.Selector, func(sr di.ServiceRegistry) domain.Selector {
		cfg := sr.Get("config").(*config.Config)
		sel := cfg.Pricing.Selection
		selector, err := domain.NewSelector(sel.Strategy, sel.Weights, sel.MaxDeviationPct)
		if err != nil {
			panic("failed to create selector: " + err.Error())
		}
		return selector
	})

	di.RegisterToken(c, pricingDI.Numeraire, func(sr di.ServiceRegistry) *app.NumeraireService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		quoter, err := newNumeraireQuoter(cfg, log)
		if err != nil {
			panic("failed to create numeraire quoter: " + err.Error())
		}
		return app.NewNumeraireService(quoter, cfg.Pricing.Numeraire.FallbackUSD, cfg.Pricing.Numeraire.QuoteTTL(), log)
	})

	di.RegisterToken(c, pricingDI.Sources, func(sr di.ServiceRegistry) []app.PriceSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		numeraire := pricingDI.GetNumeraire(sr)

		sources := make([]app.PriceSource, 0, len(cfg.Pricing.Sources))
		for _, name := range cfg.Pricing.Sources {
			src, err := newSource(name, cfg, numeraire, log)
			if err != nil {
				panic("failed to create price source " + name + ": " + err.Error())
			}
			sources = append(sources, src)
		}
		return sources
	})

	// Publisher is optional: a nil value disables the Redis mirror.
	di.RegisterToken(c, pricingDI.Publisher, func(sr di.ServiceRegistry) app.PricePublisher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		if !cfg.Redis.Enabled {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
		defer cancel()

		pub, err := redis.New(ctx, redis.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.Pricing.CacheTTL(),
		})
		if err != nil {
			log.Warn(ctx, "redis price mirror disabled", "addr", cfg.Redis.Addr, "error", err)
			return nil
		}
		return pub
	})

	// Register Resolver (public - exposed to other modules)
	di.RegisterToken(c, pricingDI.Resolver, func(sr di.ServiceRegistry) *app.Resolver {
		log := sr.Get("logger").(logger.LoggerInterface)

		var opts []app.ResolverOption
		if pub := pricingDI.GetPublisher(sr); pub != nil {
			opts = append(opts, app.WithPublisher(pub))
		}
		return app.NewResolver(
			pricingDI.GetPriceCache(sr),
			pricingDI.GetSources(sr),
			pricingDI.GetSelector(sr),
			log,
			opts...,
		)
	})

	return nil
}

// Startup initializes the pricing module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	m.resolver = pricingDI.GetResolver(mono.Services())
	m.numeraire = pricingDI.GetNumeraire(mono.Services())
	stats := m.resolver.Stats()
	if len(stats.Sources) == 0 {
		log.Warn(ctx, "no price sources enabled, every resolution will report no data")
	}

	log.Info(ctx, "pricing module started",
		"sources", stats.Sources,
		"strategy", stats.Strategy,
		"cache_ttl", mono.Config().Pricing.CacheTTL().String())
	return nil
}

// Close releases the cache, the numeraire quote cache and the Redis mirror.
func (m *Module) Close() error {
	if m.numeraire != nil {
		m.numeraire.Close()
	}
	if m.resolver == nil {
		return nil
	}
	return m.resolver.Close()
}

func newSource(name string, cfg *config.Config, numeraire app.Numeraire, log logger.LoggerInterface) (app.PriceSource, error) {
	p := cfg.Pricing
	switch name {
	case config.SourceJupiter:
		return jupiter.NewClient(jupiter.Config{
			BaseURL:           p.Jupiter.BaseURL,
			APIKey:            p.Jupiter.APIKey,
			Timeout:           p.Jupiter.Timeout,
			RequestsPerMinute: p.Jupiter.RequestsPerMinute,
			NumeraireMint:     p.Numeraire.Mint,
		}, log, jupiter.WithNumeraire(numeraire))
	case config.SourceBirdeye:
		return birdeye.NewClient(birdeye.Config{
			BaseURL:           p.Birdeye.BaseURL,
			APIKey:            p.Birdeye.APIKey,
			Timeout:           p.Birdeye.Timeout,
			RequestsPerMinute: p.Birdeye.RequestsPerMinute,
			NumeraireMint:     p.Numeraire.Mint,
		}, numeraire, log)
	case config.SourceCoinGecko:
		return newCoinGecko(cfg, log)
	case config.SourceBinance:
		return newBinance(cfg, numeraire, log)
	default:
		return nil, apperror.New(apperror.CodeConfigurationError, apperror.WithContextf("unknown price source %q", name))
	}
}

// newNumeraireQuoter picks the first enabled source able to quote the
// numeraire. The quoter is a separate client so its breaker and limiter
// do not interfere with token lookups. nil means fallback price only.
func newNumeraireQuoter(cfg *config.Config, log logger.LoggerInterface) (app.NumeraireQuoter, error) {
	p := cfg.Pricing
	for _, name := range p.Sources {
		switch name {
		case config.SourceJupiter:
			return jupiter.NewClient(jupiter.Config{
				BaseURL:           p.Jupiter.BaseURL,
				APIKey:            p.Jupiter.APIKey,
				Timeout:           p.Jupiter.Timeout,
				RequestsPerMinute: p.Jupiter.RequestsPerMinute,
				NumeraireMint:     p.Numeraire.Mint,
			}, log)
		case config.SourceBirdeye:
			return birdeye.NewClient(birdeye.Config{
				BaseURL:           p.Birdeye.BaseURL,
				APIKey:            p.Birdeye.APIKey,
				Timeout:           p.Birdeye.Timeout,
				RequestsPerMinute: p.Birdeye.RequestsPerMinute,
				NumeraireMint:     p.Numeraire.Mint,
			}, nil, log)
		case config.SourceCoinGecko:
			return newCoinGecko(cfg, log)
		case config.SourceBinance:
			return newBinance(cfg, nil, log)
		}
	}
	return nil, nil
}

func newCoinGecko(cfg *config.Config, log logger.LoggerInterface) (*coingecko.Client, error) {
	p := cfg.Pricing
	ids := make(map[string]string, len(cfg.Tokens)+1)
	for _, t := range cfg.Tokens {
		if t.CoinGeckoID != "" {
			ids[t.Mint] = t.CoinGeckoID
		}
	}
	if p.Numeraire.CoinGeckoID != "" {
		ids[p.Numeraire.Mint] = p.Numeraire.CoinGeckoID
	}
	return coingecko.NewClient(coingecko.Config{
		BaseURL:           p.CoinGecko.BaseURL,
		APIKey:            p.CoinGecko.APIKey,
		Timeout:           p.CoinGecko.Timeout,
		RequestsPerMinute: p.CoinGecko.RequestsPerMinute,
		CoinIDs:           ids,
		NumeraireID:       p.Numeraire.CoinGeckoID,
	}, log)
}

func newBinance(cfg *config.Config, numeraire app.Numeraire, log logger.LoggerInterface) (*binance.Provider, error) {
	p := cfg.Pricing
	symbols := make(map[string]string, len(cfg.Tokens)+1)
	for _, t := range cfg.Tokens {
		if t.BinanceSymbol != "" {
			symbols[t.Mint] = t.BinanceSymbol
		}
	}
	if p.Numeraire.BinanceSymbol != "" {
		symbols[p.Numeraire.Mint] = p.Numeraire.BinanceSymbol
	}
	return binance.NewProvider(binance.ProviderConfig{
		HTTPURL:           p.Binance.BaseURL,
		Timeout:           p.Binance.Timeout,
		RequestsPerMinute: p.Binance.RequestsPerMinute,
		Symbols:           symbols,
		NumeraireSymbol:   p.Numeraire.BinanceSymbol,
	}, numeraire, log)
}
