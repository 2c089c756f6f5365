package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solana-price-monitor/internal/apperror"
)

const maxTracedBody = 2048

// Request builds and executes one GET request.
type Request interface {
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetResult(result any) Request
	Get(ctx context.Context, path string) (*Response, error)
}

// Response is the buffered upstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	body       []byte
}

func (r *Response) Body() []byte { return r.body }

func (r *Response) String() string { return string(r.body) }

// IsError reports a status code of 400 or above.
func (r *Response) IsError() bool { return r.StatusCode >= http.StatusBadRequest }

type requestBuilder struct {
	client       *InstrumentedClient
	headers      map[string]string
	query        url.Values
	result       any
	errorHandler ResponseErrorHandler
	labels       []*Label
	logHeaders   bool
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	r.headers[key] = value
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.query == nil {
		r.query = url.Values{}
	}
	r.query.Set(key, value)
	return r
}

// SetResult decodes a successful JSON body into result.
func (r *requestBuilder) SetResult(result any) Request {
	r.result = result
	return r
}

// Get performs the request. Transport failures, handler rejections and
// undecodable bodies all come back as apperrors.
func (r *requestBuilder) Get(ctx context.Context, path string) (*Response, error) {
	c := r.client
	start := time.Now()

	fullURL := r.buildURL(path)

	ctx, span := c.tracer.Start(ctx, "http.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", http.MethodGet),
			attribute.String("http.path", path),
			attribute.String("provider", c.providerName),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, apperror.New(apperror.CodeInvalidInput, apperror.WithContext(fullURL), apperror.WithCause(err))
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if r.logHeaders {
		r.traceHeaders(span, req.Header)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		r.record(ctx, span, start, 0, err)
		return nil, classifyTransportError(c.providerName, err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		r.record(ctx, span, start, resp.StatusCode, err)
		return nil, apperror.New(apperror.CodeSourceUnavailable,
			apperror.WithContext(c.providerName+": read body"),
			apperror.WithCause(err),
		)
	}

	if c.logResponse {
		span.AddEvent("response.body", trace.WithAttributes(
			attribute.String("http.response_body", truncate(body)),
		))
	}

	response := &Response{StatusCode: resp.StatusCode, Header: resp.Header, body: body}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	handler := r.errorHandler
	if handler == nil {
		handler = defaultErrorHandler(c.providerName)
	}
	if herr := handler(resp.StatusCode, body); herr != nil {
		r.record(ctx, span, start, resp.StatusCode, herr)
		return response, herr
	}

	if r.result != nil {
		if err := json.Unmarshal(body, r.result); err != nil {
			r.record(ctx, span, start, resp.StatusCode, err)
			return response, apperror.New(apperror.CodeMalformedResponse,
				apperror.WithContext(c.providerName),
				apperror.WithCause(err),
			)
		}
	}

	r.record(ctx, span, start, resp.StatusCode, nil)
	return response, nil
}

func (r *requestBuilder) buildURL(path string) string {
	full := path
	if base := r.client.baseURL; base != "" && !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		full = strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + r.query.Encode()
	}
	return full
}

func (r *requestBuilder) record(ctx context.Context, span trace.Span, start time.Time, status int, err error) {
	c := r.client
	success := err == nil

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			span.SetAttributes(attribute.Bool("request.timeout", true))
		}
	}

	attrs := []attribute.KeyValue{
		attribute.String("provider", c.providerName),
		attribute.Bool("success", success),
		attribute.Int("status", status),
	}
	for _, label := range r.labels {
		attrs = append(attrs, attribute.String(label.Key, label.Value))
	}

	c.requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	c.requestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))
}

func (r *requestBuilder) traceHeaders(span trace.Span, headers http.Header) {
	attrs := make([]attribute.KeyValue, 0, len(headers))
	for k, values := range headers {
		key := strings.ToLower(k)
		val := ""
		if len(values) > 0 {
			val = values[0]
		}
		if r.client.secretHeaders[key] {
			val = "*****"
		}
		attrs = append(attrs, attribute.String("http.request.header."+key, val))
	}
	if len(attrs) > 0 {
		span.AddEvent("request.headers", trace.WithAttributes(attrs...))
	}
}

func defaultErrorHandler(provider string) ResponseErrorHandler {
	return func(statusCode int, body []byte) error {
		if statusCode < http.StatusBadRequest {
			return nil
		}
		code := apperror.CodeSourceUnavailable
		if statusCode == http.StatusTooManyRequests {
			code = apperror.CodeRateLimitExceeded
		}
		return apperror.New(code,
			apperror.WithContext(fmt.Sprintf("%s: status %d: %s", provider, statusCode, truncate(body))),
		)
	}
}

func classifyTransportError(provider string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperror.New(apperror.CodeServiceTimeout, apperror.WithContext(provider), apperror.WithCause(err))
	}
	return apperror.New(apperror.CodeSourceUnavailable, apperror.WithContext(provider), apperror.WithCause(err))
}

func truncate(body []byte) string {
	if len(body) > maxTracedBody {
		return string(body[:maxTracedBody]) + "..."
	}
	return string(body)
}
