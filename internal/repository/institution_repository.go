package repository

import (
	"context"

	"finsync/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DefaultInstitutionCountry is stored for placeholder institutions whose metadata could not be read.
const DefaultInstitutionCountry = "CZ"

type InstitutionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewInstitutionRepository(db *pgxpool.Pool, logger *zap.Logger) *InstitutionRepository {
	return &InstitutionRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert creates the institution or refreshes its metadata.
func (r *InstitutionRepository) Upsert(ctx context.Context, inst *models.Institution) error {
	sql, args, err := upsertInstitutionQuery(inst).ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// CreateIfMissing stores a placeholder (name = id) unless the institution already exists.
// Existing metadata is never overwritten with placeholder values.
func (r *InstitutionRepository) CreateIfMissing(ctx context.Context, id string) error {
	query := squirrel.Insert("institutions").
		Columns("id", "name", "country").
		Values(id, id, DefaultInstitutionCountry).
		Suffix("ON CONFLICT (id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *InstitutionRepository) List(ctx context.Context) ([]models.Institution, error) {
	query := squirrel.Select("id", "name", "country", "logo", "website", "created_at", "updated_at").
		From("institutions").
		OrderBy("name ASC").
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

	institutions := []models.Institution{}
	for rows.Next() {
		var inst models.Institution
		if err := rows.Scan(
			&inst.ID, &inst.Name, &inst.Country, &inst.Logo, &inst.Website, &inst.CreatedAt, &inst.UpdatedAt,
		); err != nil {
			return nil, err
		}
		institutions = append(institutions, inst)
	}

	return institutions, rows.Err()
}

func upsertInstitutionQuery(inst *models.Institution) squirrel.InsertBuilder {
	return squirrel.Insert("institutions").
		Columns("id", "name", "country", "logo", "website").
		Values(inst.ID, inst.Name, inst.Country, inst.Logo, inst.Website).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			country = EXCLUDED.country,
			logo = EXCLUDED.logo,
			website = EXCLUDED.website,
			updated_at = NOW()`).
		PlaceholderFormat(squirrel.Dollar)
}
