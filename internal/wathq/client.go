// Package wathq is the HTTP client of the Wathq government data API.
package wathq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/config"
)

// APIKeyHeader carries the credentials of every upstream call.
const APIKeyHeader = "apiKey"

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 4 << 20

var (
	// ErrUnknownService is returned for a service name without an endpoint.
	ErrUnknownService = errors.New("unknown wathq service")
	// ErrNotFound is returned when Wathq answers 404.
	ErrNotFound = errors.New("wathq record not found")
)

// UpstreamError is returned for transport failures and non-2xx answers other than 404.
type UpstreamError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wathq upstream: %v", e.Err)
	}
	return fmt.Sprintf("wathq upstream: status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Request identifies one lookup.
type Request struct {
	Service string
	Params  map[string]string
}

// Response is what came back from Wathq. It is returned together with
// ErrNotFound and *UpstreamError so callers can log the exchange.
type Response struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       json.RawMessage
	Duration   time.Duration
}

// Fetcher is implemented by Client.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// Client calls Wathq over HTTP. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	metrics *Metrics
}

var _ Fetcher = (*Client)(nil)

// NewClient builds a client whose transport is traced with otelhttp.
// metrics may be nil.
func NewClient(cfg config.WathqConfig, metrics *Metrics) *Client {
	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		metrics: metrics,
	}
}

// Fetch performs a GET against the service endpoint.
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	ep, ok := EndpointFor(req.Service)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownService, req.Service)
	}
	if err := ep.Validate(req.Params); err != nil {
		return nil, err
	}

	path := ep.BuildPath(req.Params)
	out := &Response{Method: http.MethodGet, Endpoint: path}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build wathq request: %w", err)
	}
	httpReq.Header.Set(APIKeyHeader, c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		out.Duration = time.Since(start)
		c.metrics.observe(req.Service, "transport_error", out.Duration.Seconds())
		return out, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	out.Duration = time.Since(start)
	out.StatusCode = resp.StatusCode
	if err != nil {
		c.metrics.observe(req.Service, "transport_error", out.Duration.Seconds())
		return out, &UpstreamError{StatusCode: resp.StatusCode, Err: err}
	}
	if json.Valid(body) {
		out.Body = body
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.metrics.observe(req.Service, "not_found", out.Duration.Seconds())
		return out, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.metrics.observe(req.Service, "error", out.Duration.Seconds())
		return out, &UpstreamError{StatusCode: resp.StatusCode, Body: body}
	case out.Body == nil:
		c.metrics.observe(req.Service, "error", out.Duration.Seconds())
		return out, &UpstreamError{StatusCode: resp.StatusCode, Body: body, Err: errors.New("response is not JSON")}
	}

	c.metrics.observe(req.Service, "success", out.Duration.Seconds())
	return out, nil
}
