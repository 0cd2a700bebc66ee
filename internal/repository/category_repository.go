package repository

import (
	"context"

	"finsync/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CategoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCategoryRepository(db *pgxpool.Pool, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureByName returns the category called name, creating it with id when absent.
// An existing category keeps its id even if it differs from the requested one.
func (r *CategoryRepository) EnsureByName(ctx context.Context, id, name string) (*models.Category, error) {
	sql, args, err := ensureCategoryQuery(id, name).ToSql()
	if err != nil {
		return nil, err
	}

	var cat models.Category
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&cat.ID, &cat.Name, &cat.CreatedAt); err != nil {
		return nil, err
	}
	return &cat, nil
}

func ensureCategoryQuery(id, name string) squirrel.InsertBuilder {
	return squirrel.Insert("categories").
		Columns("id", "name").
		Values(id, name).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id, name, created_at").
		PlaceholderFormat(squirrel.Dollar)
}
