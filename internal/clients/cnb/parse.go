package cnb

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// rateWire accepts the field names used by the official API and its mirrors.
type rateWire struct {
	Code         string          `json:"code"`
	CurrencyCode string          `json:"currencyCode"`
	IsoCode      string          `json:"isoCode"`
	Amount       json.RawMessage `json:"amount"`
	Unit         json.RawMessage `json:"unit"`
	Rate         json.RawMessage `json:"rate"`
	Mid          json.RawMessage `json:"mid"`
	ValidFor     string          `json:"validFor"`
}

type dailyWire struct {
	Date         string     `json:"date"`
	ValidFor     string     `json:"validFor"`
	EnforcedDate string     `json:"enforcedDate"`
	Rates        []rateWire `json:"rates"`
}

// parseDaily normalises a payload and reports how many entries had no usable rate.
// A payload without a date is stamped with today's date.
func parseDaily(raw json.RawMessage, now time.Time) (*DailyRates, int, error) {
	var wire dailyWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		var list []rateWire
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, 0, fmt.Errorf("cnb: unexpected payload: %w", err)
		}
		wire.Rates = list
	}

	date := firstNonEmpty(wire.Date, wire.ValidFor, wire.EnforcedDate)
	if date == "" && len(wire.Rates) > 0 {
		date = wire.Rates[0].ValidFor
	}
	if date == "" {
		date = now.Format("2006-01-02")
	}

	daily := &DailyRates{Date: strings.ReplaceAll(date, "-", "")}
	skipped := 0
	for _, r := range wire.Rates {
		code := firstNonEmpty(r.Code, r.CurrencyCode, r.IsoCode)
		if code == "" {
			continue
		}
		rate, ok := parseNumber(firstPresent(r.Rate, r.Mid))
		if !ok {
			skipped++
			continue
		}
		amount, ok := parseNumber(firstPresent(r.Amount, r.Unit))
		if !ok || amount.IsZero() {
			amount = decimal.NewFromInt(1)
		}
		daily.Rates = append(daily.Rates, Rate{Code: code, Amount: amount, Rate: rate})
	}
	return daily, skipped, nil
}

// parseNumber reads a JSON number or a string that may use a decimal comma.
func parseNumber(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, false
	}
	s := strings.TrimSpace(string(raw))
	var quoted string
	if json.Unmarshal(raw, &quoted) == nil {
		s = quoted
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

func firstPresent(values ...json.RawMessage) json.RawMessage {
	for _, v := range values {
		if len(v) > 0 && string(v) != "null" {
			return v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
