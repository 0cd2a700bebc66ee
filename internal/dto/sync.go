package dto

import "finsync/internal/models"

// SyncResult is the outcome of syncing one connection.
type SyncResult struct {
	ConnectionID string           `json:"connectionId"`
	Status       string           `json:"status"`
	Accounts     []models.Account `json:"accounts"`
	Warning      string           `json:"warning,omitempty"`
}

// ConnectionSyncResult is one entry of a sync-all run.
type ConnectionSyncResult struct {
	ID    string      `json:"id"`
	OK    bool        `json:"ok"`
	Data  *SyncResult `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

type SyncRequest struct {
	RequisitionID string `json:"requisitionId"`
	SyncAll       bool   `json:"syncAll"`
}

type SyncAllResponse struct {
	OK      bool                   `json:"ok"`
	Synced  int                    `json:"synced"`
	Results []ConnectionSyncResult `json:"results"`
}

type CronSyncResponse struct {
	OK     bool `json:"ok"`
	Synced int  `json:"synced"`
}

type DetectTransfersResponse struct {
	OK     bool `json:"ok"`
	Marked int  `json:"marked"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
