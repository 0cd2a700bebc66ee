package repository

import (
	"context"

	"finsync/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type FxRateRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewFxRateRepository(db *pgxpool.Pool, logger *zap.Logger) *FxRateRepository {
	return &FxRateRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertBatch writes one fixing in a single statement.
func (r *FxRateRepository) UpsertBatch(ctx context.Context, rates []models.FxRate) error {
	if len(rates) == 0 {
		return nil
	}

	builder := squirrel.Insert("fx_rates").
		Columns("id", "date", "currency", "amount", "rate").
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			rate = EXCLUDED.rate,
			updated_at = NOW()`).
		PlaceholderFormat(squirrel.Dollar)

	for _, rate := range rates {
		builder = builder.Values(rate.ID, rate.Date, rate.Currency, rate.Amount, rate.Rate)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Latest returns every rate of the most recent fixing date.
func (r *FxRateRepository) Latest(ctx context.Context) ([]models.FxRate, error) {
	latestDate := squirrel.Select("MAX(date)").From("fx_rates")

	query := squirrel.Select("id", "date", "currency", "amount", "rate", "updated_at").
		From("fx_rates").
		Where(squirrel.Expr("date = (?)", latestDate)).
		OrderBy("currency ASC").
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

	rates := []models.FxRate{}
	for rows.Next() {
		var rate models.FxRate
		if err := rows.Scan(&rate.ID, &rate.Date, &rate.Currency, &rate.Amount, &rate.Rate, &rate.UpdatedAt); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}

	return rates, rows.Err()
}
