// Package trading212 reads portfolio positions and cash from the Trading 212 public API.
package trading212

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finsync/pkg/config"

	"go.uber.org/zap"
)

var ErrMissingAPIKey = errors.New("trading212: T212_API_KEY is not set")

// APIError is a non-2xx response that was not retried or ran out of attempts.
type APIError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("trading212: %s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}

type Client struct {
	baseURL     string
	apiKey      string
	maxAttempts int
	backoff     time.Duration
	httpClient  *http.Client
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *zap.Logger
}

func NewClient(cfg *config.Trading212Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		maxAttempts: attempts,
		backoff:     cfg.Backoff,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		sleep:       sleepContext,
		logger:      logger,
	}, nil
}

// Portfolio returns the open positions. Positions without any identifier are skipped.
func (c *Client) Portfolio(ctx context.Context) ([]Position, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/v0/equity/portfolio", &raw); err != nil {
		return nil, err
	}
	return decodePositions(raw)
}

// Cash returns the free cash balance of the account.
func (c *Client) Cash(ctx context.Context) (*Cash, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/v0/equity/account/cash", &raw); err != nil {
		return nil, err
	}
	return decodeCash(raw)
}

// DefaultHistoryLimit is the page size used when the caller gives none.
const DefaultHistoryLimit = 50

// HistoryQuery pages through the cash transaction history. Time and Cursor
// come from the previous page's nextPagePath and are sent only when set.
type HistoryQuery struct {
	Limit  int
	Time   string
	Cursor string
}

func (q HistoryQuery) encode() string {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	v := url.Values{}
	v.Set("limit", strconv.Itoa(limit))
	if q.Time != "" {
		v.Set("time", q.Time)
	}
	if q.Cursor != "" {
		v.Set("cursor", q.Cursor)
	}
	return v.Encode()
}

// History returns one page of the account's transaction history as the API sent it.
func (c *Client) History(ctx context.Context, q HistoryQuery) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/v0/history/transactions?"+q.encode(), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// get retries 429 and 5xx responses with a linear backoff; anything else fails at once.
func (c *Client) get(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		retry, err := c.getOnce(ctx, path, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == c.maxAttempts-1 {
			break
		}

		wait := c.backoff * time.Duration(attempt+1)
		c.logger.Warn("Trading 212 request failed, retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		if err := c.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return lastErr
}

func (c *Client) getOnce(ctx context.Context, path string, out any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("trading212: failed to create request: %w", err)
	}
	// The API has accepted the key under each of these headers at some point.
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("trading212: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 400))
		apiErr := &APIError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("trading212: failed to decode %s: %w", path, err)
	}
	return false, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
