package repository

import (
	"context"

	"finsync/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var accountColumns = []string{
	"id", "provider", "account_name", "custom_name", "currency", "balance_czk", "as_of",
	"external_id", "iban", "institution_id", "connection_id", "is_visible", "created_at", "updated_at",
}

type AccountRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAccountRepository(db *pgxpool.Pool, logger *zap.Logger) *AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertSynced writes an aggregator-linked account keyed by its external id. A nil balance
// keeps the stored one (0 for a new row); custom_name and is_visible are user-owned and
// never touched.
func (r *AccountRepository) UpsertSynced(ctx context.Context, acc *models.SyncedAccount) error {
	sql, args, err := upsertSyncedAccountQuery(acc).ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListByConnection returns the accounts of a connection ordered by provider, then name.
func (r *AccountRepository) ListByConnection(ctx context.Context, connectionID string) ([]models.Account, error) {
	query := squirrel.Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"connection_id": connectionID}).
		OrderBy("provider ASC", "account_name ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var acc models.Account
		if err := rows.Scan(
			&acc.ID, &acc.Provider, &acc.AccountName, &acc.CustomName, &acc.Currency, &acc.BalanceCZK, &acc.AsOf,
			&acc.ExternalID, &acc.IBAN, &acc.InstitutionID, &acc.ConnectionID, &acc.IsVisible, &acc.CreatedAt, &acc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	return accounts, rows.Err()
}

func upsertSyncedAccountQuery(acc *models.SyncedAccount) squirrel.InsertBuilder {
	var createBalance int64
	if acc.BalanceCZK != nil {
		createBalance = *acc.BalanceCZK
	}

	identity := `
			account_name = EXCLUDED.account_name,
			currency = EXCLUDED.currency,`
	if acc.Degraded {
		identity = ""
	}

	return squirrel.Insert("accounts").
		Columns("id", "provider", "account_name", "currency", "balance_czk", "as_of",
			"external_id", "iban", "institution_id", "connection_id").
		Values(acc.ID, acc.Provider, acc.AccountName, acc.Currency, createBalance, acc.AsOf,
			acc.ID, acc.IBAN, acc.InstitutionID, acc.ConnectionID).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			provider = EXCLUDED.provider,`+identity+`
			balance_czk = COALESCE(?::BIGINT, accounts.balance_czk),
			as_of = EXCLUDED.as_of,
			external_id = EXCLUDED.external_id,
			iban = COALESCE(EXCLUDED.iban, accounts.iban),
			institution_id = EXCLUDED.institution_id,
			connection_id = EXCLUDED.connection_id,
			updated_at = NOW()`, acc.BalanceCZK).
		PlaceholderFormat(squirrel.Dollar)
}
