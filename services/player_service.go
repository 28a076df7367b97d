package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-console/brackets"
	"github.com/Dosada05/tournament-console/models"
)

type PlayerService interface {
	List(ctx context.Context, tournamentID models.ID) ([]models.RosterPlayer, error)
	Create(ctx context.Context, in models.RosterPlayer) (models.RosterPlayer, error)
	Update(ctx context.Context, playerID models.ID, in models.RosterPlayer) (models.RosterPlayer, error)
	Delete(ctx context.Context, tournamentID, playerID models.ID) error
	SetCheckIn(ctx context.Context, tournamentID, playerID models.ID, checkedIn bool) error
}

type playerService struct {
	api    TournamentAPI
	notify notifier
}

func NewPlayerService(api TournamentAPI, hub Broadcaster, logger *slog.Logger) PlayerService {
	return &playerService{api: api, notify: newNotifier(api, nil, hub, logger)}
}

func (s *playerService) List(ctx context.Context, tournamentID models.ID) ([]models.RosterPlayer, error) {
	if err := requireTournament(tournamentID); err != nil {
		return nil, err
	}
	players, err := s.api.ListPlayers(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list players of tournament %s: %w", tournamentID, err)
	}
	return players, nil
}

func (s *playerService) Create(ctx context.Context, in models.RosterPlayer) (models.RosterPlayer, error) {
	if err := in.Validate(); err != nil {
		return models.RosterPlayer{}, err
	}
	created, err := s.api.CreatePlayer(ctx, in)
	if err != nil {
		return models.RosterPlayer{}, fmt.Errorf("create player %q: %w", in.Name, err)
	}
	s.notify.announce(in.TournamentID, brackets.EventRosterChanged, map[string]interface{}{"player_id": created.ID, "action": "created"})
	return created, nil
}

func (s *playerService) Update(ctx context.Context, playerID models.ID, in models.RosterPlayer) (models.RosterPlayer, error) {
	if playerID.IsZero() {
		return models.RosterPlayer{}, models.ValidationErrors{"player_id": "is required"}
	}
	if err := in.Validate(); err != nil {
		return models.RosterPlayer{}, err
	}
	updated, err := s.api.UpdatePlayer(ctx, playerID, in)
	if err != nil {
		return models.RosterPlayer{}, fmt.Errorf("update player %s: %w", playerID, err)
	}
	s.notify.announce(in.TournamentID, brackets.EventRosterChanged, map[string]interface{}{"player_id": playerID, "action": "updated"})
	return updated, nil
}

func (s *playerService) Delete(ctx context.Context, tournamentID, playerID models.ID) error {
	if playerID.IsZero() {
		return models.ValidationErrors{"player_id": "is required"}
	}
	if err := s.api.DeletePlayer(ctx, playerID); err != nil {
		return fmt.Errorf("delete player %s: %w", playerID, err)
	}
	s.notify.announce(tournamentID, brackets.EventRosterChanged, map[string]interface{}{"player_id": playerID, "action": "deleted"})
	return nil
}

// SetCheckIn changes a player's presence. Check-in decides which matches are
// ready for a court, so fixtures screens are told to refetch as well.
func (s *playerService) SetCheckIn(ctx context.Context, tournamentID, playerID models.ID, checkedIn bool) error {
	if playerID.IsZero() {
		return models.ValidationErrors{"player_id": "is required"}
	}
	if err := s.api.SetPlayerCheckIn(ctx, playerID, checkedIn); err != nil {
		return fmt.Errorf("set check-in of player %s: %w", playerID, err)
	}
	s.notify.announce(tournamentID, brackets.EventRosterChanged, map[string]interface{}{"player_id": playerID, "checked_in": checkedIn})
	s.notify.announce(tournamentID, brackets.EventFixturesChanged, map[string]interface{}{"reason": "check_in"})
	return nil
}
