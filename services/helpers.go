package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dosada05/tournament-console/brackets"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/views"
)

// TournamentAPI is the part of the remote tournament API the console uses.
// *apiclient.Client implements it.
type TournamentAPI interface {
	GetMatchFixtures(ctx context.Context, tournamentID models.ID) ([]models.Match, error)
	UpdateScore(ctx context.Context, in models.ScoreUpdate) error
	UpdateMatchStatus(ctx context.Context, matchID models.ID, in models.StatusUpdate) error
	AssignCourt(ctx context.Context, tournamentID models.ID, in models.CourtAssignment) error
	ReorderCourt(ctx context.Context, tournamentID models.ID, in models.CourtReorder) error

	GetStandings(ctx context.Context, tournamentID models.ID, kind models.StandingsKind) ([]models.Standing, error)

	CreateKnockout(ctx context.Context, in models.KnockoutRequest) error
	CreateKnockoutFromMatches(ctx context.Context, in models.KnockoutFromMatchesRequest) error
	CheckKnockout(ctx context.Context, tournamentID models.ID) (models.KnockoutCheck, error)
	DeleteKnockout(ctx context.Context, tournamentID models.ID) error

	ListPlayers(ctx context.Context, tournamentID models.ID) ([]models.RosterPlayer, error)
	CreatePlayer(ctx context.Context, in models.RosterPlayer) (models.RosterPlayer, error)
	UpdatePlayer(ctx context.Context, playerID models.ID, in models.RosterPlayer) (models.RosterPlayer, error)
	DeletePlayer(ctx context.Context, playerID models.ID) error
	SetPlayerCheckIn(ctx context.Context, playerID models.ID, checkedIn bool) error

	ListPools(ctx context.Context, tournamentID models.ID) ([]models.Pool, error)
	CreatePool(ctx context.Context, in models.Pool) (models.Pool, error)
	DeletePool(ctx context.Context, poolID models.ID) error
	AddTeamToPool(ctx context.Context, poolID models.ID, in models.PoolTeam) error
}

// Broadcaster pushes a message to every console in a room. *brackets.Hub
// implements it.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// notifier refreshes the caller's fixtures view after a mutation and tells
// every other console of the tournament to refetch.
type notifier struct {
	api    TournamentAPI
	views  *views.Registry
	hub    Broadcaster
	logger *slog.Logger
}

func newNotifier(api TournamentAPI, registry *views.Registry, hub Broadcaster, logger *slog.Logger) notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return notifier{api: api, views: registry, hub: hub, logger: logger}
}

// refresh reloads the session's snapshot. Failures are logged only: the
// mutation itself already succeeded.
func (n notifier) refresh(ctx context.Context, sessionID string, tournamentID models.ID) {
	if sessionID == "" || n.views == nil {
		return
	}
	view := n.views.For(sessionID, tournamentID)
	if _, err := view.Load(ctx, n.api.GetMatchFixtures); err != nil && !errors.Is(err, views.ErrStaleResponse) {
		n.logger.WarnContext(ctx, "failed to refresh fixtures after mutation",
			"session_id", sessionID, "tournament_id", tournamentID.String(), "error", err)
	}
}

func (n notifier) announce(tournamentID models.ID, eventType string, payload interface{}) {
	if n.hub == nil {
		return
	}
	room := brackets.TournamentRoom(tournamentID)
	n.hub.BroadcastToRoom(room, brackets.WebSocketMessage{Type: eventType, Payload: payload, RoomID: room})
}

func requireTournament(id models.ID) error {
	if id.IsZero() {
		return models.ValidationErrors{"tournament_id": "is required"}
	}
	return nil
}
