package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-console/brackets"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/views"
)

// KnockoutService manages the knockout stage. Seeding and bracket
// generation happen in the tournament API.
type KnockoutService interface {
	Check(ctx context.Context, tournamentID models.ID) (models.KnockoutCheck, error)
	Create(ctx context.Context, sessionID string, in models.KnockoutRequest) error
	CreateFromMatches(ctx context.Context, sessionID string, in models.KnockoutFromMatchesRequest) error
	Delete(ctx context.Context, sessionID string, tournamentID models.ID) error
	Bracket(ctx context.Context, sessionID string, tournamentID models.ID) (brackets.Bracket, error)
}

type knockoutService struct {
	api    TournamentAPI
	views  *views.Registry
	notify notifier
	logger *slog.Logger
}

func NewKnockoutService(api TournamentAPI, registry *views.Registry, hub Broadcaster, logger *slog.Logger) KnockoutService {
	n := newNotifier(api, registry, hub, logger)
	return &knockoutService{api: api, views: registry, notify: n, logger: n.logger}
}

func (s *knockoutService) Check(ctx context.Context, tournamentID models.ID) (models.KnockoutCheck, error) {
	if err := requireTournament(tournamentID); err != nil {
		return models.KnockoutCheck{}, err
	}
	check, err := s.api.CheckKnockout(ctx, tournamentID)
	if err != nil {
		return models.KnockoutCheck{}, fmt.Errorf("check knockout for tournament %s: %w", tournamentID, err)
	}
	return check, nil
}

func (s *knockoutService) Create(ctx context.Context, sessionID string, in models.KnockoutRequest) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := s.api.CreateKnockout(ctx, in); err != nil {
		return fmt.Errorf("create knockout for tournament %s: %w", in.TournamentID, err)
	}
	s.changed(ctx, sessionID, in.TournamentID, "created")
	return nil
}

func (s *knockoutService) CreateFromMatches(ctx context.Context, sessionID string, in models.KnockoutFromMatchesRequest) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := s.api.CreateKnockoutFromMatches(ctx, in); err != nil {
		return fmt.Errorf("create knockout from %d matches for tournament %s: %w", len(in.MatchIDs), in.TournamentID, err)
	}
	s.changed(ctx, sessionID, in.TournamentID, "created")
	return nil
}

func (s *knockoutService) Delete(ctx context.Context, sessionID string, tournamentID models.ID) error {
	if err := requireTournament(tournamentID); err != nil {
		return err
	}
	if err := s.api.DeleteKnockout(ctx, tournamentID); err != nil {
		return fmt.Errorf("delete knockout for tournament %s: %w", tournamentID, err)
	}
	s.changed(ctx, sessionID, tournamentID, "deleted")
	return nil
}

// Bracket lays out the knockout matches of the session's snapshot.
func (s *knockoutService) Bracket(ctx context.Context, sessionID string, tournamentID models.ID) (brackets.Bracket, error) {
	if err := requireTournament(tournamentID); err != nil {
		return brackets.Bracket{}, err
	}
	n, err := s.views.For(sessionID, tournamentID).Ensure(ctx, s.api.GetMatchFixtures)
	if err != nil {
		return brackets.Bracket{}, fmt.Errorf("load fixtures for bracket: %w", err)
	}
	return brackets.BuildBracket(n.Knockouts), nil
}

func (s *knockoutService) changed(ctx context.Context, sessionID string, tournamentID models.ID, action string) {
	s.logger.InfoContext(ctx, "knockout stage changed", "tournament_id", tournamentID.String(), "action", action)
	s.notify.refresh(ctx, sessionID, tournamentID)
	s.notify.announce(tournamentID, brackets.EventKnockoutChanged, map[string]interface{}{"action": action})
}
