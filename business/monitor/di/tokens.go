// Package di contains dependency injection tokens for the monitor context.
package di

import (
	"github.com/fd1az/solana-price-monitor/business/monitor/app"
	"github.com/fd1az/solana-price-monitor/internal/di"
)

// Public service tokens - exposed to main
var (
	Monitor = di.NewToken[*app.Monitor]("monitor.Monitor")
)

// Private dependency tokens - internal to monitor module
var (
	Probes = di.NewToken[[]app.Probe]("monitor:probes")
)

// Helper functions for type-safe access
func GetMonitor(c di.ServiceRegistry) *app.Monitor {
	return di.GetToken(c, Monitor)
}

func GetProbes(c di.ServiceRegistry) []app.Probe {
	return di.GetToken(c, Probes)
}
