// Package monolith owns the shared infrastructure and drives module lifecycles.
package monolith

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/fd1az/solana-price-monitor/internal/asset"
	"github.com/fd1az/solana-price-monitor/internal/config"
	"github.com/fd1az/solana-price-monitor/internal/di"
	"github.com/fd1az/solana-price-monitor/internal/logger"
)

// Registry keys for the shared services every module may depend on.
const (
	ServiceConfig        = "config"
	ServiceLogger        = "logger"
	ServiceRPCClient     = "rpcClient"
	ServiceAssetRegistry = "assetRegistry"
)

// Monolith exposes shared infrastructure to modules.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	RPCClient() *rpc.Client
	AssetRegistry() *asset.Registry
	Services() di.ServiceRegistry
}

// Module is a bounded context. RegisterServices must not perform I/O;
// Startup may.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// Closer is implemented by modules holding resources beyond the process lifetime of a call.
type Closer interface {
	Close() error
}

type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	rpcClient     *rpc.Client
	assetRegistry *asset.Registry
	container     di.Container
	modules       []Module
}

// New wires the JSON-RPC client and the asset registry. Dialing an HTTP
// endpoint does not open a connection, so New performs no network I/O.
func New(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	rpcClient, err := rpc.DialOptions(ctx, cfg.Solana.RPCURL,
		rpc.WithHTTPClient(&http.Client{Timeout: cfg.Solana.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("dial solana rpc: %w", err)
	}

	registry := asset.DefaultRegistry()
	for _, t := range cfg.Tokens {
		if t.Symbol == "" {
			continue
		}
		registry.Upsert(asset.NewAsset(asset.Mint(t.Mint), t.Symbol, t.Decimals))
	}

	container := di.NewContainer()
	container.Register(ServiceConfig, cfg)
	container.Register(ServiceLogger, log)
	container.Register(ServiceRPCClient, rpcClient)
	container.Register(ServiceAssetRegistry, registry)

	return &app{
		config:        cfg,
		logger:        log,
		rpcClient:     rpcClient,
		assetRegistry: registry,
		container:     container,
	}, nil
}

func (a *app) Config() *config.Config { return a.config }

func (a *app) Logger() logger.LoggerInterface { return a.logger }

func (a *app) RPCClient() *rpc.Client { return a.rpcClient }

func (a *app) AssetRegistry() *asset.Registry { return a.assetRegistry }

func (a *app) Services() di.ServiceRegistry { return a.container }

func (a *app) Container() di.Container { return a.container }

// RegisterModules registers services for modules in order.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return fmt.Errorf("register %T: %w", m, err)
		}
		a.modules = append(a.modules, m)
	}
	return nil
}

// StartModules starts modules in order and stops at the first failure.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return fmt.Errorf("start %T: %w", m, err)
		}
	}
	return nil
}

// Close closes modules in reverse registration order, then the RPC client.
func (a *app) Close() error {
	var firstErr error
	for i := len(a.modules) - 1; i >= 0; i-- {
		if c, ok := a.modules[i].(Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if a.rpcClient != nil {
		a.rpcClient.Close()
	}
	return firstErr
}
