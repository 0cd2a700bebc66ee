package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const T212CashID = "t212-cash"

type T212Position struct {
	ID        string          `db:"id" json:"id"`
	Ticker    string          `db:"ticker" json:"ticker"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	AvgPrice  decimal.Decimal `db:"avg_price" json:"avgPrice"`
	CurPrice  decimal.Decimal `db:"cur_price" json:"curPrice"`
	PPL       decimal.Decimal `db:"ppl" json:"ppl"`
	Currency  string          `db:"currency" json:"currency"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// Value is the current market value of the position.
func (p T212Position) Value() decimal.Decimal {
	return p.CurPrice.Mul(p.Quantity)
}

type T212Cash struct {
	ID        string          `db:"id" json:"id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Currency  string          `db:"currency" json:"currency"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// T212Snapshot is the daily portfolio total, keyed YYYYMMDD.
type T212Snapshot struct {
	ID        string          `db:"id" json:"id"`
	Total     decimal.Decimal `db:"total" json:"total"`
	Currency  string          `db:"currency" json:"currency"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}
