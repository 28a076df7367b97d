package apiclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Dosada05/tournament-console/models"
)

// GetMatchFixtures returns every match of the tournament, pool and knockout.
func (cl *Client) GetMatchFixtures(ctx context.Context, tournamentID models.ID) ([]models.Match, error) {
	var payload models.FixturesResponse
	err := cl.do(ctx, call{
		endpoint: "get-match-fixtures",
		method:   http.MethodGet,
		path:     "/get-match-fixtures",
		query:    url.Values{"tournament_id": {tournamentID.String()}},
	}, &payload)
	if err != nil {
		return nil, err
	}
	if payload.Matches == nil {
		return []models.Match{}, nil
	}
	for i := range payload.Matches {
		m := &payload.Matches[i]
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		for _, issue := range m.Sanitize() {
			cl.logger.WarnContext(ctx, "ignoring bad match field from tournament api",
				slog.String("tournament_id", tournamentID.String()),
				slog.String("match_id", m.MatchID.String()),
				slog.String("issue", issue))
		}
	}
	return payload.Matches, nil
}

// UpdateScore records a score. Finalizing an already final match without
// Override fails with an error matching ErrAlreadyFinalized.
func (cl *Client) UpdateScore(ctx context.Context, in models.ScoreUpdate) error {
	return cl.do(ctx, call{
		endpoint: "update-score",
		method:   http.MethodPost,
		path:     "/update-score",
		body:     in,
	}, nil)
}

func (cl *Client) UpdateMatchStatus(ctx context.Context, matchID models.ID, in models.StatusUpdate) error {
	return cl.do(ctx, call{
		endpoint: "update-match-status",
		method:   http.MethodPost,
		path:     "/update-match-status/" + pathID(matchID),
		body:     in,
	}, nil)
}

func (cl *Client) AssignCourt(ctx context.Context, tournamentID models.ID, in models.CourtAssignment) error {
	return cl.do(ctx, call{
		endpoint: "court-assignments",
		method:   http.MethodPost,
		path:     "/tournaments/" + pathID(tournamentID) + "/court-assignments",
		body:     in,
	}, nil)
}

func (cl *Client) ReorderCourt(ctx context.Context, tournamentID models.ID, in models.CourtReorder) error {
	return cl.do(ctx, call{
		endpoint: "court-assignments-reorder",
		method:   http.MethodPut,
		path:     "/tournaments/" + pathID(tournamentID) + "/court-assignments/reorder",
		body:     in,
	}, nil)
}
