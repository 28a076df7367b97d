package apiclient

import (
	"context"
	"net/http"

	"github.com/Dosada05/tournament-console/models"
)

func (cl *Client) CreateKnockout(ctx context.Context, in models.KnockoutRequest) error {
	return cl.do(ctx, call{
		endpoint: "knockout",
		method:   http.MethodPost,
		path:     "/knockout",
		body:     in,
	}, nil)
}

func (cl *Client) CreateKnockoutFromMatches(ctx context.Context, in models.KnockoutFromMatchesRequest) error {
	return cl.do(ctx, call{
		endpoint: "knockout-from-matches",
		method:   http.MethodPost,
		path:     "/knockout-from-matches",
		body:     in,
	}, nil)
}

// CheckKnockout reports whether a bracket exists for the tournament.
func (cl *Client) CheckKnockout(ctx context.Context, tournamentID models.ID) (models.KnockoutCheck, error) {
	var payload models.KnockoutCheck
	err := cl.do(ctx, call{
		endpoint: "check-knockout",
		method:   http.MethodGet,
		path:     "/check-knockout/" + pathID(tournamentID),
	}, &payload)
	return payload, err
}

func (cl *Client) DeleteKnockout(ctx context.Context, tournamentID models.ID) error {
	return cl.do(ctx, call{
		endpoint: "delete-knockout",
		method:   http.MethodDelete,
		path:     "/delete-knockout/" + pathID(tournamentID),
	}, nil)
}
