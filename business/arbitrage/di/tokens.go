// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/solana-price-monitor/business/arbitrage/app"
	"github.com/fd1az/solana-price-monitor/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Scanner  = di.NewToken[*app.Scanner]("arbitrage.Scanner")
	Reporter = di.NewToken[app.Reporter]("arbitrage.Reporter")
)

// Private dependency tokens - internal to arbitrage module
var (
	Calculator = di.NewToken[*app.PoolPriceCalculator]("arbitrage:calculator")
	Detector   = di.NewToken[*app.Detector]("arbitrage:detector")
)

// Helper functions for type-safe access
func GetScanner(c di.ServiceRegistry) *app.Scanner {
	return di.GetToken(c, Scanner)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}

func GetCalculator(c di.ServiceRegistry) *app.PoolPriceCalculator {
	return di.GetToken(c, Calculator)
}

func GetDetector(c di.ServiceRegistry) *app.Detector {
	return di.GetToken(c, Detector)
}
