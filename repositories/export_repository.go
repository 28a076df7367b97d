package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-console/models"
)

var ErrExportKeyConflict = errors.New("export object key already recorded")

type ExportRepository interface {
	Create(ctx context.Context, export *models.Export) error
	ListByTournament(ctx context.Context, tournamentID models.ID, limit int) ([]*models.Export, error)
}

type postgresExportRepository struct {
	db SQLExecutor
}

func NewPostgresExportRepository(db SQLExecutor) ExportRepository {
	return &postgresExportRepository{db: db}
}

func (r *postgresExportRepository) Create(ctx context.Context, export *models.Export) error {
	query := `
		INSERT INTO console_exports (tournament_id, kind, object_key, location, etag, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		export.TournamentID.String(),
		string(export.Kind),
		export.ObjectKey,
		export.Location,
		export.ETag,
		export.CreatedBy,
	).Scan(&export.ID, &export.CreatedAt)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return ErrExportKeyConflict
		}
		return fmt.Errorf("record export %s: %w", export.ObjectKey, err)
	}
	return nil
}

func (r *postgresExportRepository) ListByTournament(ctx context.Context, tournamentID models.ID, limit int) ([]*models.Export, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, tournament_id, kind, object_key, location, etag, created_by, created_at
		FROM console_exports
		WHERE tournament_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, tournamentID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list exports for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	exports := make([]*models.Export, 0)
	for rows.Next() {
		var (
			e    models.Export
			tid  string
			kind string
		)
		if err := rows.Scan(&e.ID, &tid, &kind, &e.ObjectKey, &e.Location, &e.ETag, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		e.TournamentID = models.ID(tid)
		e.Kind = models.ExportKind(kind)
		exports = append(exports, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export rows: %w", err)
	}
	return exports, nil
}
