package trading212

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

const defaultCurrency = "EUR"

type Position struct {
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
	AvgPrice decimal.Decimal `json:"averagePrice"`
	CurPrice decimal.Decimal `json:"currentPrice"`
	PPL      decimal.Decimal `json:"ppl"`
	Currency string          `json:"currency"`
}

type Cash struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// positionWire covers the field aliases seen across API versions.
type positionWire struct {
	Ticker        string          `json:"ticker"`
	Symbol        string          `json:"symbol"`
	ID            json.RawMessage `json:"id"`
	Quantity      decimal.Decimal `json:"quantity"`
	AveragePrice  decimal.Decimal `json:"averagePrice"`
	AvgPrice      decimal.Decimal `json:"avgPrice"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	Price         decimal.Decimal `json:"price"`
	PPL           decimal.Decimal `json:"ppl"`
	UnrealizedPnl decimal.Decimal `json:"unrealizedPnl"`
	Currency      string          `json:"currency"`
}

// decodePositions accepts either a bare array or an object with a positions array.
func decodePositions(raw json.RawMessage) ([]Position, error) {
	var list []positionWire
	if err := json.Unmarshal(raw, &list); err != nil {
		var wrapped struct {
			Positions []positionWire `json:"positions"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("trading212: unexpected portfolio payload: %w", err)
		}
		list = wrapped.Positions
	}

	positions := make([]Position, 0, len(list))
	for _, w := range list {
		ticker := w.Ticker
		if ticker == "" {
			ticker = w.Symbol
		}
		if ticker == "" && len(w.ID) > 0 && string(w.ID) != "null" {
			var s string
			if json.Unmarshal(w.ID, &s) != nil {
				s = string(w.ID)
			}
			ticker = s
		}
		if ticker == "" {
			continue
		}

		currency := w.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		positions = append(positions, Position{
			Ticker:   ticker,
			Quantity: w.Quantity,
			AvgPrice: orElse(w.AveragePrice, w.AvgPrice),
			CurPrice: orElse(w.CurrentPrice, w.Price),
			PPL:      orElse(w.PPL, w.UnrealizedPnl),
			Currency: currency,
		})
	}
	return positions, nil
}

// decodeCash understands a bare number, {"cash": n}, {"cash": {"EUR": n}} and the
// account summary shape with "free". currencyCode overrides the currency when present.
func decodeCash(raw json.RawMessage) (*Cash, error) {
	cash := &Cash{Currency: defaultCurrency}

	var number decimal.Decimal
	if err := json.Unmarshal(raw, &number); err == nil {
		cash.Amount = number
		return cash, nil
	}

	var obj struct {
		Cash         json.RawMessage  `json:"cash"`
		Free         *decimal.Decimal `json:"free"`
		CurrencyCode string           `json:"currencyCode"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("trading212: unexpected cash payload: %w", err)
	}

	switch {
	case len(obj.Cash) > 0 && json.Unmarshal(obj.Cash, &number) == nil:
		cash.Amount = number
	case len(obj.Cash) > 0:
		var byCurrency map[string]decimal.Decimal
		if err := json.Unmarshal(obj.Cash, &byCurrency); err == nil && len(byCurrency) > 0 {
			codes := make([]string, 0, len(byCurrency))
			for code := range byCurrency {
				codes = append(codes, code)
			}
			sort.Strings(codes)
			cash.Currency = codes[0]
			cash.Amount = byCurrency[codes[0]]
		}
	case obj.Free != nil:
		cash.Amount = *obj.Free
	}

	if obj.CurrencyCode != "" {
		cash.Currency = obj.CurrencyCode
	}
	return cash, nil
}

func orElse(v, fallback decimal.Decimal) decimal.Decimal {
	if v.IsZero() {
		return fallback
	}
	return v
}
