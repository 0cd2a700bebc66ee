// Package cnb fetches the daily exchange rate fixing of the Czech National Bank.
package cnb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finsync/pkg/config"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Rate says that Amount units of Code cost Rate CZK.
type Rate struct {
	Code   string
	Amount decimal.Decimal
	Rate   decimal.Decimal
}

// DailyRates is one fixing. Date is formatted YYYYMMDD.
type DailyRates struct {
	Date  string
	Rates []Rate
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
	logger     *zap.Logger
}

func NewClient(cfg *config.CNBConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
		logger:     logger,
	}
}

// Daily returns the latest published fixing.
func (c *Client) Daily(ctx context.Context) (*DailyRates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cnbapi/exrates/daily?lang=EN", nil)
	if err != nil {
		return nil, fmt.Errorf("cnb: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cnb: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 400))
		return nil, fmt.Errorf("cnb: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("cnb: failed to decode response: %w", err)
	}

	daily, skipped, err := parseDaily(raw, c.now())
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.logger.Warn("Skipped unparseable CNB rates", zap.Int("skipped", skipped), zap.String("date", daily.Date))
	}
	return daily, nil
}
