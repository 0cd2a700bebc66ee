// Package gocardless is a client for the GoCardless Bank Account Data (open-banking) API.
//
// A Client owns its bearer token: the token is exchanged on first use and reused until the
// expiry reported by the token endpoint. Construct one Client per sync run.
package gocardless

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finsync/pkg/config"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

var ErrMissingCredentials = errors.New("gocardless: GC_SECRET_ID and GC_SECRET_KEY must be set")

// APIError is returned for every non-2xx upstream response. The body is kept so the
// caller sees what the aggregator said.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gocardless: %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsRateLimited reports whether err is an upstream 429.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

type Client struct {
	baseURL      string
	country      string
	homeCurrency string
	location     *time.Location
	httpClient   *http.Client
	tokens       oauth2.TokenSource
	limiter      *rate.Limiter
	logger       *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for both token exchange and API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLocation sets the zone date-only upstream timestamps are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		c.location = loc
	}
}

// WithHomeCurrency sets the currency assumed for accounts whose details could not be read.
func WithHomeCurrency(currency string) Option {
	return func(c *Client) {
		c.homeCurrency = currency
	}
}

// NewClient builds a client for one sync run. Token exchanges run under ctx, so cancelling
// the run also aborts a pending exchange; API calls use their own per-call context.
func NewClient(ctx context.Context, cfg *config.GoCardlessConfig, logger *zap.Logger, opts ...Option) (*Client, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, ErrMissingCredentials
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		country:      cfg.Country,
		homeCurrency: "CZK",
		location:     time.UTC,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		limiter:      rate.NewLimiter(limit, burst),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.tokens = oauth2.ReuseTokenSource(nil, &secretTokenSource{
		ctx:        ctx,
		url:        c.baseURL + "/token/new/",
		secretID:   cfg.SecretID,
		secretKey:  cfg.SecretKey,
		httpClient: c.httpClient,
		now:        time.Now,
	})

	if cfg.Sandbox {
		logger.Info("Using GoCardless sandbox credentials")
	} else {
		logger.Debug("Using GoCardless production credentials")
	}

	return c, nil
}

// do sends one authenticated JSON request and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("gocardless: %s: %w", op, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gocardless: failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("gocardless: failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token()
	if err != nil {
		return err
	}
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gocardless: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(op, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gocardless: failed to decode %s response: %w", op, err)
	}
	return nil
}

func newAPIError(op string, resp *http.Response) *APIError {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(bodyBytes)),
	}
}
