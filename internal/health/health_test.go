package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServer_Endpoints(t *testing.T) {
	s := NewServer(0, "v1.2.3")
	healthy := true
	s.RegisterCheck("monitor", func(ctx context.Context) (bool, string) {
		if healthy {
			return true, "last cycle 1s ago"
		}
		return false, "stalled"
	})

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	tests := []struct {
		name       string
		healthy    bool
		path       string
		wantStatus int
	}{
		{"live_always_ok", false, "/live", http.StatusOK},
		{"ready_ok", true, "/ready", http.StatusOK},
		{"ready_degraded", false, "/ready", http.StatusServiceUnavailable},
		{"health_ok", true, "/health", http.StatusOK},
		{"health_degraded", false, "/health", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			healthy = tt.healthy
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestServer_HealthBody(t *testing.T) {
	s := NewServer(0, "dev")
	s.RegisterCheck("a", func(context.Context) (bool, string) { return true, "" })
	s.RegisterCheck("b", func(context.Context) (bool, string) { return false, "breaker open" })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var status Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Status != "degraded" || status.Version != "dev" {
		t.Errorf("status = %+v", status)
	}
	if status.Checks["b"].Message != "breaker open" || status.Checks["b"].Healthy {
		t.Errorf("check b = %+v", status.Checks["b"])
	}
}
