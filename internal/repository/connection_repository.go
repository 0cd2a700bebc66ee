package repository

import (
	"context"

	"finsync/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ConnectionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewConnectionRepository(db *pgxpool.Pool, logger *zap.Logger) *ConnectionRepository {
	return &ConnectionRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert creates the connection or refreshes its status. The institution of an existing
// connection never changes.
func (r *ConnectionRepository) Upsert(ctx context.Context, conn *models.Connection) error {
	sql, args, err := upsertConnectionQuery(conn).ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListIDs returns every known connection id, oldest first.
func (r *ConnectionRepository) ListIDs(ctx context.Context) ([]string, error) {
	query := squirrel.Select("id").
		From("connections").
		OrderBy("created_at ASC", "id ASC").
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

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func upsertConnectionQuery(conn *models.Connection) squirrel.InsertBuilder {
	return squirrel.Insert("connections").
		Columns("id", "institution_id", "status").
		Values(conn.ID, conn.InstitutionID, string(conn.Status)).
		Suffix("ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()").
		PlaceholderFormat(squirrel.Dollar)
}
