package dto

import (
	"finsync/internal/models"

	"github.com/shopspring/decimal"
)

type FXSyncResult struct {
	OK    bool   `json:"ok"`
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type T212SyncResult struct {
	OK    bool            `json:"ok"`
	Total decimal.Decimal `json:"total"`
}

// NightlyResult reports each stage of the nightly job. T212Total is nil when the
// Trading 212 stage was skipped or failed.
type NightlyResult struct {
	OK        bool             `json:"ok"`
	FxOK      bool             `json:"fxOk"`
	T212Total *decimal.Decimal `json:"t212Total,omitempty"`
	GcOK      bool             `json:"gcOk"`
	Synced    int              `json:"synced"`
	Errors    []string         `json:"errors,omitempty"`
}

type FXLatestResponse struct {
	Date  *string         `json:"date"`
	Rates []models.FxRate `json:"rates"`
}

// T212ErrorResponse carries the upstream status and a truncated body.
type T212ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
