package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxRate is one CNB quote: Amount units of Currency cost Rate units of the home currency.
type FxRate struct {
	ID        string          `db:"id" json:"id"`
	Date      string          `db:"date" json:"date"`
	Currency  string          `db:"currency" json:"currency"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Rate      decimal.Decimal `db:"rate" json:"rate"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// FxRateID is the natural key of a quote, e.g. 20250114-EUR.
func FxRateID(date, currency string) string {
	return date + "-" + currency
}
