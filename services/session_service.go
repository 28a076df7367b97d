package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/repositories"
	"github.com/Dosada05/tournament-console/views"
	"github.com/google/uuid"
)

// SessionService owns the console's "current tournament": every screen of
// a session works against it until the operator changes it explicitly.
type SessionService interface {
	Start(ctx context.Context, operator string) (*models.ConsoleSession, error)
	Current(ctx context.Context, sessionID string) (*models.ConsoleSession, error)
	SelectTournament(ctx context.Context, sessionID string, tournamentID models.ID) (*models.ConsoleSession, error)
	ClearTournament(ctx context.Context, sessionID string) (*models.ConsoleSession, error)
	End(ctx context.Context, sessionID string) error
	// PurgeIdle removes sessions idle for longer than maxIdle.
	PurgeIdle(ctx context.Context, maxIdle time.Duration) (int, error)
}

type sessionService struct {
	repo   repositories.SessionRepository
	views  *views.Registry
	logger *slog.Logger
	now    func() time.Time
}

func NewSessionService(repo repositories.SessionRepository, registry *views.Registry, logger *slog.Logger) SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &sessionService{repo: repo, views: registry, logger: logger, now: time.Now}
}

func (s *sessionService) Start(ctx context.Context, operator string) (*models.ConsoleSession, error) {
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return nil, models.ValidationErrors{"operator": "is required"}
	}
	session := &models.ConsoleSession{ID: uuid.NewString(), Operator: operator}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("start console session for %s: %w", operator, err)
	}
	s.logger.InfoContext(ctx, "console session started", "session_id", session.ID, "operator", operator)
	return session, nil
}

func (s *sessionService) Current(ctx context.Context, sessionID string) (*models.ConsoleSession, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return session, nil
}

func (s *sessionService) SelectTournament(ctx context.Context, sessionID string, tournamentID models.ID) (*models.ConsoleSession, error) {
	if err := requireTournament(tournamentID); err != nil {
		return nil, err
	}
	if err := s.repo.SetTournament(ctx, sessionID, &tournamentID); err != nil {
		return nil, s.mapRepoError(err)
	}
	// Pointing the view at the new tournament drops anything still in flight
	// for the old one.
	s.views.For(sessionID, tournamentID)
	return s.Current(ctx, sessionID)
}

func (s *sessionService) ClearTournament(ctx context.Context, sessionID string) (*models.ConsoleSession, error) {
	if err := s.repo.SetTournament(ctx, sessionID, nil); err != nil {
		return nil, s.mapRepoError(err)
	}
	s.views.Drop(sessionID)
	return s.Current(ctx, sessionID)
}

func (s *sessionService) End(ctx context.Context, sessionID string) error {
	s.views.Drop(sessionID)
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return s.mapRepoError(err)
	}
	return nil
}

func (s *sessionService) PurgeIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	ids, err := s.repo.DeleteIdle(ctx, s.now().Add(-maxIdle))
	if err != nil {
		return 0, fmt.Errorf("purge idle sessions: %w", err)
	}
	for _, id := range ids {
		s.views.Drop(id)
	}
	return len(ids), nil
}

func (s *sessionService) mapRepoError(err error) error {
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return ErrSessionExpired
	}
	return fmt.Errorf("console session: %w", err)
}
