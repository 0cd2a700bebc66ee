package repository

import (
	"context"
	"errors"

	"finsync/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Trading212Repository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTrading212Repository(db *pgxpool.Pool, logger *zap.Logger) *Trading212Repository {
	return &Trading212Repository{
		db:     db,
		logger: logger,
	}
}

// UpsertPositions writes the positions keyed by ticker inside one transaction.
func (r *Trading212Repository) UpsertPositions(ctx context.Context, positions []models.T212Position) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, p := range positions {
		query := squirrel.Insert("t212_positions").
			Columns("id", "ticker", "quantity", "avg_price", "cur_price", "ppl", "currency").
			Values(p.ID, p.Ticker, p.Quantity, p.AvgPrice, p.CurPrice, p.PPL, p.Currency).
			Suffix(`ON CONFLICT (id) DO UPDATE SET
				quantity = EXCLUDED.quantity,
				avg_price = EXCLUDED.avg_price,
				cur_price = EXCLUDED.cur_price,
				ppl = EXCLUDED.ppl,
				currency = EXCLUDED.currency,
				updated_at = NOW()`).
			PlaceholderFormat(squirrel.Dollar)

		sql, args, err := query.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Trading212Repository) ListPositions(ctx context.Context) ([]models.T212Position, error) {
	query := squirrel.Select("id", "ticker", "quantity", "avg_price", "cur_price", "ppl", "currency", "updated_at").
		From("t212_positions").
		OrderBy("ticker ASC").
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

	positions := []models.T212Position{}
	for rows.Next() {
		var p models.T212Position
		if err := rows.Scan(&p.ID, &p.Ticker, &p.Quantity, &p.AvgPrice, &p.CurPrice, &p.PPL, &p.Currency, &p.UpdatedAt); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	return positions, rows.Err()
}

func (r *Trading212Repository) UpsertCash(ctx context.Context, cash *models.T212Cash) error {
	query := squirrel.Insert("t212_cash").
		Columns("id", "amount", "currency").
		Values(cash.ID, cash.Amount, cash.Currency).
		Suffix("ON CONFLICT (id) DO UPDATE SET amount = EXCLUDED.amount, currency = EXCLUDED.currency, updated_at = NOW()").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// GetCash returns nil when no cash row has been stored yet.
func (r *Trading212Repository) GetCash(ctx context.Context) (*models.T212Cash, error) {
	query := squirrel.Select("id", "amount", "currency", "updated_at").
		From("t212_cash").
		Where(squirrel.Eq{"id": models.T212CashID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var cash models.T212Cash
	err = r.db.QueryRow(ctx, sql, args...).Scan(&cash.ID, &cash.Amount, &cash.Currency, &cash.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cash, nil
}

func (r *Trading212Repository) UpsertSnapshot(ctx context.Context, snap *models.T212Snapshot) error {
	query := squirrel.Insert("t212_snapshots").
		Columns("id", "total", "currency").
		Values(snap.ID, snap.Total, snap.Currency).
		Suffix("ON CONFLICT (id) DO UPDATE SET total = EXCLUDED.total, currency = EXCLUDED.currency, updated_at = NOW()").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func listSnapshotsQuery() squirrel.SelectBuilder {
	return squirrel.Select("id", "total", "currency", "created_at", "updated_at").
		From("t212_snapshots").
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar)
}

// ListSnapshots returns every stored snapshot; ids are YYYYMMDD so id order is date order.
func (r *Trading212Repository) ListSnapshots(ctx context.Context) ([]models.T212Snapshot, error) {
	sql, args, err := listSnapshotsQuery().ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := []models.T212Snapshot{}
	for rows.Next() {
		var s models.T212Snapshot
		if err := rows.Scan(&s.ID, &s.Total, &s.Currency, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}
