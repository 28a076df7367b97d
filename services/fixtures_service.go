package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-console/fixtures"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/views"
)

type FixturesService interface {
	// Load fetches the tournament's fixtures into the session's view.
	Load(ctx context.Context, sessionID string, tournamentID models.ID) (fixtures.Normalized, error)
	Query(ctx context.Context, q FixturesQuery) (*FixturesPage, error)
}

// FixturesQuery selects what a fixtures screen shows. Nil filters are off.
type FixturesQuery struct {
	SessionID    string
	TournamentID models.ID
	Round        string
	Pool         *string
	Status       models.MatchStatusValue
	Court        *int
	HasCourt     *bool
	Ready        bool
	GroupByCourt bool
	Refresh      bool
}

func (q FixturesQuery) Validate() error {
	v := models.ValidationErrors{}
	if q.TournamentID.IsZero() {
		v["tournament_id"] = "is required"
	}
	switch q.Status {
	case "", models.MatchPending, models.MatchOngoing, models.MatchCompleted:
	default:
		v["status"] = `must be one of "pending", "on-going", "completed"`
	}
	if q.Court != nil && *q.Court <= 0 {
		v["court"] = "must be a positive integer"
	}
	if len(v) > 0 {
		return v
	}
	return nil
}

// Predicate combines the query's filters.
func (q FixturesQuery) Predicate() fixtures.Predicate {
	preds := make([]fixtures.Predicate, 0, 4)
	if q.Status != "" {
		preds = append(preds, fixtures.ByStatus(q.Status))
	}
	if q.Court != nil {
		preds = append(preds, fixtures.OnCourt(*q.Court))
	}
	if q.HasCourt != nil {
		if *q.HasCourt {
			preds = append(preds, fixtures.HasCourt)
		} else {
			preds = append(preds, fixtures.Unassigned)
		}
	}
	if q.Ready {
		preds = append(preds, fixtures.ReadyForCourt)
	}
	return fixtures.All(preds...)
}

// FixturesPage is one render of a fixtures screen. Matches is set for the
// list layout, Courts when grouping by court.
type FixturesPage struct {
	TournamentID  models.ID               `json:"tournament_id"`
	Rounds        []fixtures.RoundSummary `json:"rounds"`
	DefaultRound  string                  `json:"default_round,omitempty"`
	SelectedRound string                  `json:"selected_round,omitempty"`
	Matches       []models.Match          `json:"matches,omitempty"`
	Courts        fixtures.CourtGroups    `json:"courts,omitempty"`
	Knockouts     []models.Match          `json:"knockouts"`
	LoadedAt      time.Time               `json:"loaded_at"`
}

type fixturesService struct {
	api    TournamentAPI
	views  *views.Registry
	logger *slog.Logger
}

func NewFixturesService(api TournamentAPI, registry *views.Registry, logger *slog.Logger) FixturesService {
	if logger == nil {
		logger = slog.Default()
	}
	return &fixturesService{api: api, views: registry, logger: logger}
}

func (s *fixturesService) Load(ctx context.Context, sessionID string, tournamentID models.ID) (fixtures.Normalized, error) {
	if err := requireTournament(tournamentID); err != nil {
		return fixtures.Normalized{}, err
	}
	n, err := s.views.For(sessionID, tournamentID).Load(ctx, s.api.GetMatchFixtures)
	if err != nil {
		return fixtures.Normalized{}, fmt.Errorf("load fixtures for tournament %s: %w", tournamentID, err)
	}
	return n, nil
}

func (s *fixturesService) Query(ctx context.Context, q FixturesQuery) (*FixturesPage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	view := s.views.For(q.SessionID, q.TournamentID)
	var (
		n   fixtures.Normalized
		err error
	)
	if q.Refresh {
		n, err = view.Load(ctx, s.api.GetMatchFixtures)
		// A newer load already replaced the snapshot; show that one.
		if errors.Is(err, views.ErrStaleResponse) {
			if latest, _, ok := view.Snapshot(); ok {
				n, err = latest, nil
			}
		}
	} else {
		n, err = view.Ensure(ctx, s.api.GetMatchFixtures)
	}
	if err != nil {
		return nil, fmt.Errorf("load fixtures for tournament %s: %w", q.TournamentID, err)
	}
	_, loadedAt, _ := view.Snapshot()

	page := &FixturesPage{
		TournamentID: q.TournamentID,
		Rounds:       fixtures.RoundSummaries(n.Rounds),
		Knockouts:    n.Knockouts,
		LoadedAt:     loadedAt,
	}
	if def, ok := fixtures.SelectDefaultRound(n.Rounds); ok {
		page.DefaultRound = def
	}
	page.SelectedRound = q.Round
	if page.SelectedRound == "" {
		page.SelectedRound = page.DefaultRound
	}

	pred := q.Predicate()

	// The court board spans every round unless one is asked for.
	if q.GroupByCourt {
		var matches []models.Match
		if q.Round == "" {
			for _, m := range n.Matches() {
				if pred(m) {
					matches = append(matches, m)
				}
			}
			page.SelectedRound = ""
		} else {
			matches = fixtures.FilterMatches(n.Rounds, q.Round, q.Pool, pred)
		}
		page.Courts = fixtures.GroupByCourt(matches)
		return page, nil
	}

	page.Matches = fixtures.FilterMatches(n.Rounds, page.SelectedRound, q.Pool, pred)
	return page, nil
}
