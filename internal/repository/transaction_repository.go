package repository

import (
	"context"
	"time"

	"finsync/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes a synced transaction keyed by id. category_id is never written here so a
// user or detector assignment survives re-syncs; an empty merchant_norm keeps the stored one.
func (r *TransactionRepository) Upsert(ctx context.Context, tx *models.Transaction) error {
	sql, args, err := upsertTransactionQuery(tx).ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListTransferCandidates returns transactions at or after since, newest first.
func (r *TransactionRepository) ListTransferCandidates(ctx context.Context, since time.Time) ([]models.TransferCandidate, error) {
	query := squirrel.Select("id", "ts", "amount_czk", "account_id", "category_id").
		From("transactions").
		Where(squirrel.GtOrEq{"ts": since}).
		OrderBy("ts DESC").
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

	candidates := []models.TransferCandidate{}
	for rows.Next() {
		var c models.TransferCandidate
		if err := rows.Scan(&c.ID, &c.Ts, &c.AmountCZK, &c.AccountID, &c.CategoryID); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

// AssignCategory sets categoryID on the given uncategorized transactions and returns the
// number of rows changed. Rows that gained a category in the meantime are left alone.
func (r *TransactionRepository) AssignCategory(ctx context.Context, ids []string, categoryID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	sql, args, err := assignCategoryQuery(ids, categoryID).ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func upsertTransactionQuery(tx *models.Transaction) squirrel.InsertBuilder {
	return squirrel.Insert("transactions").
		Columns("id", "ts", "amount_czk", "raw_description", "merchant_norm", "account_id",
			"currency", "amount_original", "balance_after", "external_id").
		Values(tx.ID, tx.Ts, tx.AmountCZK, tx.RawDescription, tx.MerchantNorm, tx.AccountID,
			tx.Currency, tx.AmountOriginal, tx.BalanceAfter, tx.ExternalID).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			ts = EXCLUDED.ts,
			amount_czk = EXCLUDED.amount_czk,
			raw_description = EXCLUDED.raw_description,
			merchant_norm = COALESCE(NULLIF(EXCLUDED.merchant_norm, ''), transactions.merchant_norm),
			account_id = EXCLUDED.account_id,
			currency = EXCLUDED.currency,
			amount_original = EXCLUDED.amount_original,
			balance_after = COALESCE(EXCLUDED.balance_after, transactions.balance_after),
			external_id = EXCLUDED.external_id,
			updated_at = NOW()`).
		PlaceholderFormat(squirrel.Dollar)
}

func assignCategoryQuery(ids []string, categoryID string) squirrel.UpdateBuilder {
	return squirrel.Update("transactions").
		Set("category_id", categoryID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"category_id": nil}).
		PlaceholderFormat(squirrel.Dollar)
}
