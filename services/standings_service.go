package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-console/models"
	"golang.org/x/sync/errgroup"
)

type StandingsService interface {
	Get(ctx context.Context, tournamentID models.ID, kind models.StandingsKind) ([]models.Standing, error)
	// All fetches the pool, overall and second-place tables concurrently.
	All(ctx context.Context, tournamentID models.ID) (*models.StandingsSet, error)
}

type standingsService struct {
	api TournamentAPI
}

func NewStandingsService(api TournamentAPI) StandingsService {
	return &standingsService{api: api}
}

func (s *standingsService) Get(ctx context.Context, tournamentID models.ID, kind models.StandingsKind) ([]models.Standing, error) {
	if err := requireTournament(tournamentID); err != nil {
		return nil, err
	}
	if kind == "" {
		kind = models.StandingsPool
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStandingsKind, kind)
	}
	rows, err := s.api.GetStandings(ctx, tournamentID, kind)
	if err != nil {
		return nil, fmt.Errorf("get %s standings for tournament %s: %w", kind, tournamentID, err)
	}
	return rows, nil
}

func (s *standingsService) All(ctx context.Context, tournamentID models.ID) (*models.StandingsSet, error) {
	if err := requireTournament(tournamentID); err != nil {
		return nil, err
	}

	set := &models.StandingsSet{}
	g, gctx := errgroup.WithContext(ctx)
	targets := map[models.StandingsKind]*[]models.Standing{
		models.StandingsPool:        &set.Pool,
		models.StandingsOverall:     &set.Overall,
		models.StandingsSecondPlace: &set.SecondPlace,
	}
	for kind, dst := range targets {
		kind, dst := kind, dst
		g.Go(func() error {
			rows, err := s.api.GetStandings(gctx, tournamentID, kind)
			if err != nil {
				return fmt.Errorf("get %s standings for tournament %s: %w", kind, tournamentID, err)
			}
			*dst = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}
