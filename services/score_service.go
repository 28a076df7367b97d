package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-console/apiclient"
	"github.com/Dosada05/tournament-console/brackets"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/views"
)

type ScoreService interface {
	UpdateScore(ctx context.Context, sessionID string, in models.ScoreUpdate) error
	UpdateStatus(ctx context.Context, sessionID string, matchID models.ID, in models.StatusUpdate) error
}

type scoreService struct {
	api    TournamentAPI
	notify notifier
	logger *slog.Logger
}

func NewScoreService(api TournamentAPI, registry *views.Registry, hub Broadcaster, logger *slog.Logger) ScoreService {
	n := newNotifier(api, registry, hub, logger)
	return &scoreService{api: api, notify: n, logger: n.logger}
}

// UpdateScore sends a score. A final score can only be replaced when the
// request carries override; without it the API's finalize conflict comes
// back as ErrFinalizeConflict so the operator can confirm and resend.
func (s *scoreService) UpdateScore(ctx context.Context, sessionID string, in models.ScoreUpdate) error {
	if err := in.Validate(); err != nil {
		return err
	}

	err := s.api.UpdateScore(ctx, in)
	if err != nil {
		if errors.Is(err, apiclient.ErrAlreadyFinalized) && !in.Override {
			return fmt.Errorf("%w: %s", ErrFinalizeConflict, apiclient.Message(err))
		}
		return fmt.Errorf("update score of match %s: %w", in.MatchID, err)
	}

	s.logger.InfoContext(ctx, "score updated",
		"tournament_id", in.TournamentID.String(), "match_id", in.MatchID.String(),
		"score", in.Score, "final", in.Final, "override", in.Override)

	s.notify.refresh(ctx, sessionID, in.TournamentID)
	s.notify.announce(in.TournamentID, brackets.EventFixturesChanged, map[string]interface{}{
		"match_id": in.MatchID,
		"reason":   "score",
	})
	return nil
}

func (s *scoreService) UpdateStatus(ctx context.Context, sessionID string, matchID models.ID, in models.StatusUpdate) error {
	if matchID.IsZero() {
		return models.ValidationErrors{"match_id": "is required"}
	}
	if err := in.Validate(); err != nil {
		return err
	}

	if err := s.api.UpdateMatchStatus(ctx, matchID, in); err != nil {
		return fmt.Errorf("update status of match %s: %w", matchID, err)
	}

	s.notify.refresh(ctx, sessionID, in.TournamentID)
	s.notify.announce(in.TournamentID, brackets.EventFixturesChanged, map[string]interface{}{
		"match_id": matchID,
		"reason":   "status",
		"status":   in.Status,
	})
	return nil
}
