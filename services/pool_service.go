package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-console/brackets"
	"github.com/Dosada05/tournament-console/models"
)

type PoolService interface {
	List(ctx context.Context, tournamentID models.ID) ([]models.Pool, error)
	Create(ctx context.Context, in models.Pool) (models.Pool, error)
	// Delete fails with apiclient.ErrPoolHasFixtures once matches exist.
	Delete(ctx context.Context, tournamentID, poolID models.ID) error
	AddTeam(ctx context.Context, tournamentID, poolID models.ID, in models.PoolTeam) error
}

type poolService struct {
	api    TournamentAPI
	notify notifier
}

func NewPoolService(api TournamentAPI, hub Broadcaster, logger *slog.Logger) PoolService {
	return &poolService{api: api, notify: newNotifier(api, nil, hub, logger)}
}

func (s *poolService) List(ctx context.Context, tournamentID models.ID) ([]models.Pool, error) {
	if err := requireTournament(tournamentID); err != nil {
		return nil, err
	}
	pools, err := s.api.ListPools(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list pools of tournament %s: %w", tournamentID, err)
	}
	return pools, nil
}

func (s *poolService) Create(ctx context.Context, in models.Pool) (models.Pool, error) {
	if err := in.Validate(); err != nil {
		return models.Pool{}, err
	}
	created, err := s.api.CreatePool(ctx, in)
	if err != nil {
		return models.Pool{}, fmt.Errorf("create pool %q: %w", in.Name, err)
	}
	s.notify.announce(in.TournamentID, brackets.EventRosterChanged, map[string]interface{}{"pool_id": created.ID, "action": "created"})
	return created, nil
}

func (s *poolService) Delete(ctx context.Context, tournamentID, poolID models.ID) error {
	if poolID.IsZero() {
		return models.ValidationErrors{"pool_id": "is required"}
	}
	if err := s.api.DeletePool(ctx, poolID); err != nil {
		return fmt.Errorf("delete pool %s: %w", poolID, err)
	}
	s.notify.announce(tournamentID, brackets.EventRosterChanged, map[string]interface{}{"pool_id": poolID, "action": "deleted"})
	return nil
}

func (s *poolService) AddTeam(ctx context.Context, tournamentID, poolID models.ID, in models.PoolTeam) error {
	v := models.ValidationErrors{}
	if poolID.IsZero() {
		v["pool_id"] = "is required"
	}
	if in.TeamID.IsZero() {
		v["team_id"] = "is required"
	}
	if len(v) > 0 {
		return v
	}
	if err := s.api.AddTeamToPool(ctx, poolID, in); err != nil {
		return fmt.Errorf("add team %s to pool %s: %w", in.TeamID, poolID, err)
	}
	s.notify.announce(tournamentID, brackets.EventRosterChanged, map[string]interface{}{"pool_id": poolID, "team_id": in.TeamID, "action": "team_added"})
	return nil
}
