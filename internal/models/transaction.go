package models

import "time"

// Transaction is a ledger entry. ID doubles as the upsert idempotency key: synced rows use
// the aggregator's transaction id.
type Transaction struct {
	ID             string    `db:"id" json:"id"`
	Ts             time.Time `db:"ts" json:"ts"`
	AmountCZK      int64     `db:"amount_czk" json:"amountCZK"`
	RawDescription string    `db:"raw_description" json:"rawDescription"`
	MerchantNorm   string    `db:"merchant_norm" json:"merchantNorm"`
	AccountID      string    `db:"account_id" json:"accountId"`
	CategoryID     *string   `db:"category_id" json:"categoryId"`
	Currency       string    `db:"currency" json:"currency"`
	AmountOriginal int64     `db:"amount_original" json:"amountOriginal"`
	BalanceAfter   *int64    `db:"balance_after" json:"balanceAfter"`
	ExternalID     *string   `db:"external_id" json:"externalId"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// TransferCandidate is the slim projection the transfer detector works on.
type TransferCandidate struct {
	ID         string    `db:"id"`
	Ts         time.Time `db:"ts"`
	AmountCZK  int64     `db:"amount_czk"`
	AccountID  string    `db:"account_id"`
	CategoryID *string   `db:"category_id"`
}

// Categorized reports whether a category has already been assigned.
func (c TransferCandidate) Categorized() bool {
	return c.CategoryID != nil && *c.CategoryID != ""
}
