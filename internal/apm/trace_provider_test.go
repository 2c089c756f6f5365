package apm

import (
	"context"
	"io"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/fd1az/solana-price-monitor/internal/logger"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders("x-honeycomb-team=abc, api-key=def,broken,=empty")
	if len(got) != 2 || got["x-honeycomb-team"] != "abc" || got["api-key"] != "def" {
		t.Errorf("ParseHeaders = %v", got)
	}
}

func TestTraceID(t *testing.T) {
	if TraceID(context.Background()) != "" {
		t.Error("no span should yield empty trace id")
	}

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	if id := TraceID(ctx); len(id) != 32 {
		t.Errorf("TraceID = %q, want 32 hex chars", id)
	}
}

func TestNewTraceProvider_None(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	tp, err := NewTraceProvider(context.Background(), log, Config{Provider: EmptyProvider})
	if err != nil {
		t.Fatalf("NewTraceProvider: %v", err)
	}
	if err := tp.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
