package monolith

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fd1az/solana-price-monitor/internal/asset"
	"github.com/fd1az/solana-price-monitor/internal/config"
	"github.com/fd1az/solana-price-monitor/internal/di"
	"github.com/fd1az/solana-price-monitor/internal/logger"
)

type recordingModule struct {
	name     string
	log      *[]string
	startErr error
}

func (m *recordingModule) RegisterServices(c di.Container) error {
	*m.log = append(*m.log, "register:"+m.name)
	return nil
}

func (m *recordingModule) Startup(ctx context.Context, mono Monolith) error {
	*m.log = append(*m.log, "start:"+m.name)
	return m.startErr
}

func (m *recordingModule) Close() error {
	*m.log = append(*m.log, "close:"+m.name)
	return nil
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := &config.Config{
		Solana: config.SolanaConfig{RPCURL: "http://127.0.0.1:8899"},
		Tokens: []config.TokenConfig{{Mint: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin", Symbol: "SRM", Decimals: 6}},
	}
	a, err := New(context.Background(), cfg, logger.New(io.Discard, logger.LevelError, "test", nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestApp_ModuleLifecycle(t *testing.T) {
	a := newTestApp(t)

	var log []string
	first := &recordingModule{name: "chain", log: &log}
	second := &recordingModule{name: "pricing", log: &log}

	if err := a.RegisterModules(first, second); err != nil {
		t.Fatalf("RegisterModules: %v", err)
	}
	if err := a.StartModules(context.Background(), first, second); err != nil {
		t.Fatalf("StartModules: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := []string{"register:chain", "register:pricing", "start:chain", "start:pricing", "close:pricing", "close:chain"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
}

func TestApp_StartStopsAtFirstFailure(t *testing.T) {
	a := newTestApp(t)
	defer a.Close()

	var log []string
	boom := errors.New("boom")
	failing := &recordingModule{name: "a", log: &log, startErr: boom}
	never := &recordingModule{name: "b", log: &log}

	err := a.StartModules(context.Background(), failing, never)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(log) != 1 {
		t.Errorf("second module should not start, log = %v", log)
	}
}

func TestApp_SharedServices(t *testing.T) {
	a := newTestApp(t)
	defer a.Close()

	if a.Services().Get(ServiceConfig).(*config.Config) != a.Config() {
		t.Error("config not registered")
	}
	if a.AssetRegistry().Label(asset.Mint("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")) != "SRM" {
		t.Error("configured token symbol should be registered")
	}
	if a.RPCClient() == nil {
		t.Error("rpc client missing")
	}
}
