package models

import "time"

const ProviderGoCardless = "GoCardless"

// Account is a bank or brokerage account. ConnectionID is nil for manual accounts.
// BalanceCZK is always a whole number of home-currency units.
type Account struct {
	ID            string    `db:"id" json:"id"`
	Provider      string    `db:"provider" json:"provider"`
	AccountName   string    `db:"account_name" json:"accountName"`
	CustomName    *string   `db:"custom_name" json:"customName"`
	Currency      string    `db:"currency" json:"currency"`
	BalanceCZK    int64     `db:"balance_czk" json:"balanceCZK"`
	AsOf          time.Time `db:"as_of" json:"asOf"`
	ExternalID    *string   `db:"external_id" json:"externalId"`
	IBAN          *string   `db:"iban" json:"iban"`
	InstitutionID *string   `db:"institution_id" json:"institutionId"`
	ConnectionID  *string   `db:"connection_id" json:"connectionId"`
	IsVisible     bool      `db:"is_visible" json:"isVisible"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// SyncedAccount is the write model produced by a bank sync. A nil BalanceCZK leaves the
// stored balance untouched on update and stores 0 on first insert; a nil IBAN keeps the
// stored one. Degraded rows (details unavailable upstream) only set name and currency on
// first insert.
type SyncedAccount struct {
	ID            string
	Provider      string
	AccountName   string
	Currency      string
	BalanceCZK    *int64
	AsOf          time.Time
	IBAN          *string
	InstitutionID string
	ConnectionID  string
	Degraded      bool
}
