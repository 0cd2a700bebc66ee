package models

import "time"

// ConnectionStatus is controlled by the aggregator (CR, LN, EX, RJ, ...).
// Values are stored as received and never validated against a local list.
type ConnectionStatus string

// ConnectionStatusCreated is what the aggregator reports for a freshly created requisition.
const ConnectionStatusCreated ConnectionStatus = "CR"

// Connection is one consent-linked relationship ("requisition") with an institution.
type Connection struct {
	ID            string           `db:"id" json:"id"`
	InstitutionID string           `db:"institution_id" json:"institutionId"`
	Status        ConnectionStatus `db:"status" json:"status"`
	CreatedAt     time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updatedAt"`
}
