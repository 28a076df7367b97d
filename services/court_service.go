package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-console/brackets"
	"github.com/Dosada05/tournament-console/fixtures"
	"github.com/Dosada05/tournament-console/metrics"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/views"
)

type CourtService interface {
	// Assign puts a match on a court. A zero CourtOrder appends it after
	// the matches already queued on that court.
	Assign(ctx context.Context, sessionID string, tournamentID models.ID, in models.CourtAssignment) (models.CourtAssignment, error)
	Reorder(ctx context.Context, in ReorderInput) (views.ReorderResult, error)
}

// ReorderInput is a drag of ActiveID onto the slot of OverID.
type ReorderInput struct {
	SessionID    string
	TournamentID models.ID
	Court        int       `json:"court_number"`
	ActiveID     models.ID `json:"active_id"`
	OverID       models.ID `json:"over_id"`
}

func (in ReorderInput) Validate() error {
	v := models.ValidationErrors{}
	if in.TournamentID.IsZero() {
		v["tournament_id"] = "is required"
	}
	if in.Court <= 0 {
		v["court_number"] = "must be a positive integer"
	}
	if in.ActiveID.IsZero() {
		v["active_id"] = "is required"
	}
	if in.OverID.IsZero() {
		v["over_id"] = "is required"
	}
	if len(v) > 0 {
		return v
	}
	return nil
}

type courtService struct {
	api     TournamentAPI
	views   *views.Registry
	notify  notifier
	metrics *metrics.Recorder
	logger  *slog.Logger
}

func NewCourtService(api TournamentAPI, registry *views.Registry, hub Broadcaster, rec *metrics.Recorder, logger *slog.Logger) CourtService {
	n := newNotifier(api, registry, hub, logger)
	return &courtService{api: api, views: registry, notify: n, metrics: rec, logger: n.logger}
}

func (s *courtService) Assign(ctx context.Context, sessionID string, tournamentID models.ID, in models.CourtAssignment) (models.CourtAssignment, error) {
	if err := requireTournament(tournamentID); err != nil {
		return in, err
	}
	if in.CourtOrder == 0 && in.CourtNumber > 0 {
		n, err := s.views.For(sessionID, tournamentID).Ensure(ctx, s.api.GetMatchFixtures)
		if err != nil {
			return in, fmt.Errorf("load fixtures to place match on court %d: %w", in.CourtNumber, err)
		}
		in.CourtOrder = fixtures.NextCourtOrder(n, in.CourtNumber)
	}
	if err := in.Validate(); err != nil {
		return in, err
	}

	if err := s.api.AssignCourt(ctx, tournamentID, in); err != nil {
		return in, fmt.Errorf("assign match %s to court %d: %w", in.MatchID, in.CourtNumber, err)
	}

	s.notify.refresh(ctx, sessionID, tournamentID)
	s.notify.announce(tournamentID, brackets.EventFixturesChanged, map[string]interface{}{
		"match_id":     in.MatchID,
		"reason":       "court",
		"court_number": in.CourtNumber,
	})
	return in, nil
}

// Reorder applies the drag optimistically, persists it and reverts by
// refetching when the API refuses. Other consoles see the optimistic order
// right away and a full refetch request after a revert.
func (s *courtService) Reorder(ctx context.Context, in ReorderInput) (views.ReorderResult, error) {
	if err := in.Validate(); err != nil {
		return views.ReorderResult{}, err
	}

	view := s.views.For(in.SessionID, in.TournamentID)
	if _, err := view.Ensure(ctx, s.api.GetMatchFixtures); err != nil {
		return views.ReorderResult{}, fmt.Errorf("load fixtures before reorder: %w", err)
	}

	observe := func(ev views.ReorderEvent) {
		if ev.Phase == views.PhaseOptimistic {
			s.notify.announce(ev.TournamentID, brackets.EventCourtReordered, ev)
		}
	}

	res, err := view.Reorder(ctx, views.ReorderInput{
		Court:    in.Court,
		ActiveID: in.ActiveID,
		OverID:   in.OverID,
	}, s.api.ReorderCourt, s.api.GetMatchFixtures, observe)

	switch {
	case err == nil:
		s.metrics.ObserveReorder(string(res.Outcome))
	case errors.Is(err, views.ErrReorderReverted):
		s.metrics.ObserveReorder(string(views.OutcomeReverted))
		s.logger.WarnContext(ctx, "court reorder reverted",
			"tournament_id", in.TournamentID.String(), "court", in.Court, "error", err)
		s.notify.announce(in.TournamentID, brackets.EventFixturesChanged, map[string]interface{}{
			"reason":       "reorder_reverted",
			"court_number": in.Court,
		})
	}
	return res, err
}
