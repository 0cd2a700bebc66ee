package service

import (
	"context"
	"time"

	"finsync/internal/clients/gocardless"
	"finsync/internal/models"

	"github.com/shopspring/decimal"
)

// Aggregator is the open-banking API as seen by the sync orchestrator.
// *gocardless.Client implements it.
type Aggregator interface {
	ListInstitutions(ctx context.Context) ([]gocardless.Institution, error)
	GetInstitution(ctx context.Context, institutionID string) (*gocardless.Institution, error)
	StartConnection(ctx context.Context, institutionID, redirectURL string) (*gocardless.StartedConnection, error)
	GetRequisition(ctx context.Context, connectionID string) (*gocardless.Requisition, error)
	ListAccounts(ctx context.Context, connectionID string) ([]gocardless.ExternalAccount, error)
	GetBalances(ctx context.Context, accountID string) ([]gocardless.Balance, error)
	FetchTransactions(ctx context.Context, accountID string, since time.Time) ([]gocardless.ExternalTransaction, error)
}

// AggregatorFactory builds a fresh client, and with it a fresh token, for one sync run.
// The token exchange is bound to ctx.
type AggregatorFactory func(ctx context.Context) (Aggregator, error)

type InstitutionStore interface {
	Upsert(ctx context.Context, inst *models.Institution) error
	CreateIfMissing(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Institution, error)
}

type ConnectionStore interface {
	Upsert(ctx context.Context, conn *models.Connection) error
	ListIDs(ctx context.Context) ([]string, error)
}

type AccountStore interface {
	UpsertSynced(ctx context.Context, acc *models.SyncedAccount) error
	ListByConnection(ctx context.Context, connectionID string) ([]models.Account, error)
}

type TransactionStore interface {
	Upsert(ctx context.Context, tx *models.Transaction) error
	ListTransferCandidates(ctx context.Context, since time.Time) ([]models.TransferCandidate, error)
	AssignCategory(ctx context.Context, ids []string, categoryID string) (int64, error)
}

type CategoryStore interface {
	EnsureByName(ctx context.Context, id, name string) (*models.Category, error)
}

type FxRateStore interface {
	UpsertBatch(ctx context.Context, rates []models.FxRate) error
	Latest(ctx context.Context) ([]models.FxRate, error)
}

type T212Store interface {
	UpsertPositions(ctx context.Context, positions []models.T212Position) error
	ListPositions(ctx context.Context) ([]models.T212Position, error)
	UpsertCash(ctx context.Context, cash *models.T212Cash) error
	GetCash(ctx context.Context) (*models.T212Cash, error)
	UpsertSnapshot(ctx context.Context, snap *models.T212Snapshot) error
	ListSnapshots(ctx context.Context) ([]models.T212Snapshot, error)
}

// HomeConverter converts an amount into the home currency. ok is false when no rate is known.
type HomeConverter interface {
	ToHome(ctx context.Context, amount decimal.Decimal, currency string) (converted decimal.Decimal, ok bool, err error)
}

// TransferMarker is the post-sync pass run after every sync trigger.
type TransferMarker interface {
	DetectAndMark(ctx context.Context) (int, error)
}
