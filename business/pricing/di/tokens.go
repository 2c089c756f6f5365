// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/fd1az/solana-price-monitor/business/pricing/app"
	"github.com/fd1az/solana-price-monitor/business/pricing/domain"
	"github.com/fd1az/solana-price-monitor/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Resolver = di.NewToken[*app.Resolver]("pricing.Resolver")
)

// Private dependency tokens - internal to pricing module
var (
	PriceCache = di.NewToken[*app.PriceCache]("pricing:priceCache")
	Sources    = di.NewToken[[]app.PriceSource]("pricing:sources")
	Selector   = di.NewToken[domain.Selector]("pricing:selector")
	Numeraire  = di.NewToken[*app.NumeraireService]("pricing:numeraire")
	Publisher  = di.NewToken[app.PricePublisher]("pricing:publisher")
)

// Helper functions for type-safe access
func GetResolver(c di.ServiceRegistry) *app.Resolver {
	return di.GetToken(c, Resolver)
}

func GetPriceCache(c di.ServiceRegistry) *app.PriceCache {
	return di.GetToken(c, PriceCache)
}

func GetSources(c di.ServiceRegistry) []app.PriceSource {
	return di.GetToken(c, Sources)
}

func GetSelector(c di.ServiceRegistry) domain.Selector {
	return di.GetToken(c, Selector)
}

func GetNumeraire(c di.ServiceRegistry) *app.NumeraireService {
	return di.GetToken(c, Numeraire)
}

func GetPublisher(c di.ServiceRegistry) app.PricePublisher {
	return di.GetToken(c, Publisher)
}
