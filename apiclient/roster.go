package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Dosada05/tournament-console/models"
)

func (cl *Client) ListPlayers(ctx context.Context, tournamentID models.ID) ([]models.RosterPlayer, error) {
	var payload models.PlayersResponse
	err := cl.do(ctx, call{
		endpoint: "players",
		method:   http.MethodGet,
		path:     "/player-ops/players",
		query:    url.Values{"tournament_id": {tournamentID.String()}},
	}, &payload)
	if err != nil {
		return nil, err
	}
	if payload.Players == nil {
		return []models.RosterPlayer{}, nil
	}
	return payload.Players, nil
}

func (cl *Client) CreatePlayer(ctx context.Context, in models.RosterPlayer) (models.RosterPlayer, error) {
	var payload struct {
		Player models.RosterPlayer `json:"player"`
	}
	err := cl.do(ctx, call{
		endpoint: "players",
		method:   http.MethodPost,
		path:     "/player-ops/players",
		body:     in,
	}, &payload)
	return payload.Player, err
}

func (cl *Client) UpdatePlayer(ctx context.Context, playerID models.ID, in models.RosterPlayer) (models.RosterPlayer, error) {
	var payload struct {
		Player models.RosterPlayer `json:"player"`
	}
	err := cl.do(ctx, call{
		endpoint: "players",
		method:   http.MethodPut,
		path:     "/player-ops/players/" + pathID(playerID),
		body:     in,
	}, &payload)
	return payload.Player, err
}

func (cl *Client) DeletePlayer(ctx context.Context, playerID models.ID) error {
	return cl.do(ctx, call{
		endpoint: "players",
		method:   http.MethodDelete,
		path:     "/player-ops/players/" + pathID(playerID),
	}, nil)
}

// SetPlayerCheckIn marks a player present or absent.
func (cl *Client) SetPlayerCheckIn(ctx context.Context, playerID models.ID, checkedIn bool) error {
	return cl.do(ctx, call{
		endpoint: "players-check-in",
		method:   http.MethodPut,
		path:     "/player-ops/players/" + pathID(playerID) + "/check-in",
		body:     map[string]bool{"checked_in": checkedIn},
	}, nil)
}

func (cl *Client) ListPools(ctx context.Context, tournamentID models.ID) ([]models.Pool, error) {
	var payload models.PoolsResponse
	err := cl.do(ctx, call{
		endpoint: "pools",
		method:   http.MethodGet,
		path:     "/match-ops/pools",
		query:    url.Values{"tournament_id": {tournamentID.String()}},
	}, &payload)
	if err != nil {
		return nil, err
	}
	if payload.Pools == nil {
		return []models.Pool{}, nil
	}
	return payload.Pools, nil
}

func (cl *Client) CreatePool(ctx context.Context, in models.Pool) (models.Pool, error) {
	var payload struct {
		Pool models.Pool `json:"pool"`
	}
	err := cl.do(ctx, call{
		endpoint: "pools",
		method:   http.MethodPost,
		path:     "/match-ops/pools",
		body:     in,
	}, &payload)
	return payload.Pool, err
}

// DeletePool fails with an error matching ErrPoolHasFixtures when matches
// were already generated for the pool.
func (cl *Client) DeletePool(ctx context.Context, poolID models.ID) error {
	return cl.do(ctx, call{
		endpoint: "pools",
		method:   http.MethodDelete,
		path:     "/match-ops/pools/" + pathID(poolID),
	}, nil)
}

func (cl *Client) AddTeamToPool(ctx context.Context, poolID models.ID, in models.PoolTeam) error {
	return cl.do(ctx, call{
		endpoint: "pools-teams",
		method:   http.MethodPost,
		path:     "/match-ops/pools/" + pathID(poolID) + "/teams",
		body:     in,
	}, nil)
}
