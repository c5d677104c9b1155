// Package backendapi is the HTTP client for the two backend auth endpoints
// the login flow consumes: one returning a provider login URL for a desired
// role, one exchanging an authorization code for a token pair and profile.
//
// The backend contract is treated as best-effort: missing optional fields in
// a successful exchange response are filled with documented defaults rather
// than rejected (see ParseExchange).
package backendapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// genericFailure is shown when a non-2xx body carries no usable detail.
const genericFailure = "authentication failed"

// Config holds backend API client configuration.
type Config struct {
	BaseURL        string        `env:"BACKEND_BASE_URL" envDefault:"http://localhost:8000/api/v1"`
	Provider       string        `env:"AUTH_PROVIDER" envDefault:"google"`
	RequestTimeout time.Duration `env:"BACKEND_REQUEST_TIMEOUT" envDefault:"15s"`
}

// Client talks to the backend auth endpoints.
type Client struct {
	baseURL    string
	provider   string
	httpClient *http.Client
}

// ClientOption configures a Client during construction.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests, custom transports).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a backend API client. Requests carry cfg.RequestTimeout
// so a hung backend cannot leave the flow loading forever.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		provider:   cfg.Provider,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginURLResponse struct {
	URL string `json:"url"`
}

// LoginURL requests the provider login URL for the desired role.
func (c *Client) LoginURL(ctx context.Context, role string) (string, error) {
	endpoint := fmt.Sprintf("%s/auth/%s/login?role=%s", c.baseURL, c.provider, url.QueryEscape(role))

	var out loginURLResponse
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", ErrMissingLoginURL
	}
	return out.URL, nil
}

// ExchangeCode trades an authorization code (plus the role captured before
// the redirect) for a token pair and user profile.
func (c *Client) ExchangeCode(ctx context.Context, code, role string) (*ExchangeResult, error) {
	endpoint := fmt.Sprintf("%s/auth/%s/callback?code=%s&role=%s",
		c.baseURL, c.provider, url.QueryEscape(code), url.QueryEscape(role))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("backendapi: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backendapi: exchange request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("backendapi: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}

	return ParseExchange(body)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("backendapi: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backendapi: request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backendapi: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("backendapi: decode response: %w", err)
	}
	return nil
}

// errorDetail extracts a backend-reported message from a non-2xx body.
// The backend uses {"detail": ...}; {"error": ...} is accepted for older
// deployments. Anything else falls back to a generic message.
func errorDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
		Err    string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Err != "" {
			return payload.Err
		}
	}
	return genericFailure
}
