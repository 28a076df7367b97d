package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-console/models"
)

var (
	ErrSessionNotFound = errors.New("console session not found")
	ErrSessionConflict = errors.New("console session id already exists")
)

// SessionRepository persists console sessions and the tournament each one
// is working on.
type SessionRepository interface {
	Create(ctx context.Context, session *models.ConsoleSession) error
	GetByID(ctx context.Context, id string) (*models.ConsoleSession, error)
	// SetTournament stores the current tournament; nil clears it.
	SetTournament(ctx context.Context, id string, tournamentID *models.ID) error
	Delete(ctx context.Context, id string) error
	// DeleteIdle removes sessions untouched since before and returns their ids.
	DeleteIdle(ctx context.Context, before time.Time) ([]string, error)
}

type postgresSessionRepository struct {
	db SQLExecutor
}

func NewPostgresSessionRepository(db SQLExecutor) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) Create(ctx context.Context, session *models.ConsoleSession) error {
	query := `
		INSERT INTO console_sessions (id, operator, tournament_id)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		session.ID,
		session.Operator,
		nullableID(session.TournamentID),
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return ErrSessionConflict
		}
		return fmt.Errorf("create console session: %w", err)
	}
	return nil
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, id string) (*models.ConsoleSession, error) {
	query := `
		SELECT id, operator, tournament_id, created_at, updated_at
		FROM console_sessions
		WHERE id = $1`

	var (
		session    models.ConsoleSession
		tournament sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.Operator,
		&tournament,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get console session %s: %w", id, err)
	}
	if tournament.Valid {
		tid := models.ID(tournament.String)
		session.TournamentID = &tid
	}
	return &session, nil
}

func (r *postgresSessionRepository) SetTournament(ctx context.Context, id string, tournamentID *models.ID) error {
	query := `
		UPDATE console_sessions
		SET tournament_id = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, nullableID(tournamentID))
	if err != nil {
		return fmt.Errorf("set tournament for session %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM console_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete console session %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) DeleteIdle(ctx context.Context, before time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `DELETE FROM console_sessions WHERE updated_at < $1 RETURNING id`, before)
	if err != nil {
		return nil, fmt.Errorf("delete idle console sessions: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted session ids: %w", err)
	}
	return ids, nil
}

func nullableID(id *models.ID) sql.NullString {
	if id == nil || id.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}
