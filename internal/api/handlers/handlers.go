package handlers

import (
	"context"
	"encoding/json"

	"finsync/internal/clients/gocardless"
	"finsync/internal/clients/trading212"
	"finsync/internal/dto"
	"finsync/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// The handlers depend on these narrow views of the services so they can be exercised
// without a database or upstream APIs.

type BankSyncer interface {
	Run(ctx context.Context, connectionID string) (*dto.SyncResult, error)
	RunAll(ctx context.Context) ([]dto.ConnectionSyncResult, error)
}

type TransferDetector interface {
	DetectAndMark(ctx context.Context) (int, error)
}

type ConnectionManager interface {
	ListInstitutions(ctx context.Context) ([]gocardless.Institution, error)
	StoredInstitutions(ctx context.Context) ([]models.Institution, error)
	StartConnection(ctx context.Context, institutionID, redirectURL string) (*gocardless.StartedConnection, error)
	FinalizeConnection(ctx context.Context, connectionID string) (string, error)
}

type FXSyncer interface {
	SyncCNB(ctx context.Context) (*dto.FXSyncResult, error)
	Latest(ctx context.Context) ([]models.FxRate, error)
}

type T212Syncer interface {
	Sync(ctx context.Context) (decimal.Decimal, error)
	CachedPortfolio(ctx context.Context) ([]trading212.Position, error)
	CachedCash(ctx context.Context) (*trading212.Cash, error)
	History(ctx context.Context, q trading212.HistoryQuery) (json.RawMessage, error)
	StoredCash(ctx context.Context) (*models.T212Cash, error)
	Snapshots(ctx context.Context) ([]models.T212Snapshot, error)
}

type NightlyRunner interface {
	Run(ctx context.Context) *dto.NightlyResult
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: message})
}
