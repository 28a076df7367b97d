package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Dosada05/tournament-console/models"
)

var standingsPaths = map[models.StandingsKind]string{
	models.StandingsPool:        "/standings/",
	models.StandingsOverall:     "/overall-standings/",
	models.StandingsSecondPlace: "/second-place-standings/",
}

// GetStandings fetches one of the standings tables computed by the API.
func (cl *Client) GetStandings(ctx context.Context, tournamentID models.ID, kind models.StandingsKind) ([]models.Standing, error) {
	prefix, ok := standingsPaths[kind]
	if !ok {
		return nil, fmt.Errorf("unknown standings kind %q", kind)
	}

	var payload models.StandingsResponse
	err := cl.do(ctx, call{
		endpoint: string(kind) + "-standings",
		method:   http.MethodGet,
		path:     prefix + pathID(tournamentID),
	}, &payload)
	if err != nil {
		return nil, err
	}
	if payload.Standings == nil {
		return []models.Standing{}, nil
	}
	return payload.Standings, nil
}

func (cl *Client) Standings(ctx context.Context, tournamentID models.ID) ([]models.Standing, error) {
	return cl.GetStandings(ctx, tournamentID, models.StandingsPool)
}

func (cl *Client) OverallStandings(ctx context.Context, tournamentID models.ID) ([]models.Standing, error) {
	return cl.GetStandings(ctx, tournamentID, models.StandingsOverall)
}

func (cl *Client) SecondPlaceStandings(ctx context.Context, tournamentID models.ID) ([]models.Standing, error) {
	return cl.GetStandings(ctx, tournamentID, models.StandingsSecondPlace)
}
