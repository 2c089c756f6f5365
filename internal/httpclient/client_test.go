package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fd1az/solana-price-monitor/internal/apperror"
)

type quote struct {
	Price float64 `json:"price"`
}

func newTestClient(t *testing.T, url string, opts ...ClientOption) *InstrumentedClient {
	t.Helper()
	opts = append([]ClientOption{WithBaseURL(url), WithProviderName("test")}, opts...)
	c, err := NewInstrumentedClient(opts...)
	if err != nil {
		t.Fatalf("NewInstrumentedClient: %v", err)
	}
	return c
}

func TestRequest_GetDecodesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/price/v3" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("ids"); got != "a b" {
			t.Errorf("ids = %q, want %q", got, "a b")
		}
		if r.Header.Get("x-api-key") != "secret" {
			t.Errorf("missing api key header")
		}
		w.Write([]byte(`{"price": 1.5}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL+"/", WithHeaders(map[string]string{"x-api-key": "secret"}), WithSecretHeaders("x-api-key"))

	var q quote
	resp, err := c.NewRequest(WithHeaderLogging()).SetQueryParam("ids", "a b").SetResult(&q).Get(context.Background(), "/price/v3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.IsError() {
		t.Errorf("unexpected error status %d", resp.StatusCode)
	}
	if q.Price != 1.5 {
		t.Errorf("Price = %v, want 1.5", q.Price)
	}
}

func TestRequest_ErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode apperror.Code
	}{
		{"server_error", http.StatusInternalServerError, apperror.CodeSourceUnavailable},
		{"unauthorized", http.StatusUnauthorized, apperror.CodeSourceUnavailable},
		{"rate_limited", http.StatusTooManyRequests, apperror.CodeRateLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			c := newTestClient(t, server.URL)
			resp, err := c.NewRequest().Get(context.Background(), "/x")
			if apperror.GetCode(err) != tt.wantCode {
				t.Fatalf("code = %v, want %v (err=%v)", apperror.GetCode(err), tt.wantCode, err)
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Errorf("response should carry status %d", tt.status)
			}
		})
	}
}

func TestRequest_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	var q quote
	_, err := c.NewRequest().SetResult(&q).Get(context.Background(), "/")
	if apperror.GetCode(err) != apperror.CodeMalformedResponse {
		t.Fatalf("code = %v, want MALFORMED_RESPONSE", apperror.GetCode(err))
	}
}

func TestRequest_CustomErrorHandler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	handler := func(status int, body []byte) error {
		return apperror.New(apperror.CodeMalformedResponse, apperror.WithContext(string(body)))
	}
	_, err := c.NewRequest(WithResponseErrorHandler(handler)).Get(context.Background(), "/")
	if apperror.GetCode(err) != apperror.CodeMalformedResponse {
		t.Fatalf("custom handler not applied: %v", err)
	}
}

func TestRequest_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, WithRequestTimeout(20*time.Millisecond))
	_, err := c.NewRequest().Get(context.Background(), "/")
	if apperror.GetCode(err) != apperror.CodeServiceTimeout {
		t.Fatalf("code = %v, want SERVICE_TIMEOUT (err=%v)", apperror.GetCode(err), err)
	}
}

func TestBuildURL(t *testing.T) {
	c := &InstrumentedClient{baseURL: "https://api.example.com/"}
	r := &requestBuilder{client: c}
	if got := r.buildURL("/v1/x"); got != "https://api.example.com/v1/x" {
		t.Errorf("buildURL = %q", got)
	}
	if got := r.buildURL("https://other.example.com/y"); got != "https://other.example.com/y" {
		t.Errorf("absolute URL should be kept, got %q", got)
	}
	r.SetQueryParam("a", "1")
	if got := r.buildURL("/z?b=2"); got != "https://api.example.com/z?b=2&a=1" {
		t.Errorf("buildURL with query = %q", got)
	}
}
