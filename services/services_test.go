package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/tournament-console/apiclient"
	"github.com/Dosada05/tournament-console/brackets"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const tid = models.ID("42")

func TestFixturesQuery_DefaultRoundAndFilters(t *testing.T) {
	api := &fakeAPI{matches: []models.Match{
		poolMatch("1", "9", "A"),
		poolMatch("2", "10", "A"),
		onCourt(poolMatch("3", "10", "B"), 1, 1),
		poolMatch("4", "10", "B"),
	}}
	svc := NewFixturesService(api, views.NewRegistry(), nil)

	page, err := svc.Query(context.Background(), FixturesQuery{SessionID: "s", TournamentID: tid})
	require.NoError(t, err)
	assert.Equal(t, "10", page.DefaultRound)
	assert.Equal(t, "10", page.SelectedRound)
	assert.Len(t, page.Matches, 3)
	assert.Len(t, page.Rounds, 2)

	pool := "B"
	hasCourt := false
	page, err = svc.Query(context.Background(), FixturesQuery{SessionID: "s", TournamentID: tid, Pool: &pool, HasCourt: &hasCourt})
	require.NoError(t, err)
	require.Len(t, page.Matches, 1)
	assert.Equal(t, models.ID("4"), page.Matches[0].MatchID)

	assert.Equal(t, 1, api.fetchCount(), "later queries reuse the snapshot")
}

func TestFixturesQuery_RefreshRefetches(t *testing.T) {
	api := &fakeAPI{matches: []models.Match{poolMatch("1", "1", "A")}}
	svc := NewFixturesService(api, views.NewRegistry(), nil)

	_, err := svc.Query(context.Background(), FixturesQuery{SessionID: "s", TournamentID: tid})
	require.NoError(t, err)
	_, err = svc.Query(context.Background(), FixturesQuery{SessionID: "s", TournamentID: tid, Refresh: true})
	require.NoError(t, err)

	assert.Equal(t, 2, api.fetchCount())
}

func TestFixturesQuery_EmptyPoolSelectsPoolless(t *testing.T) {
	api := &fakeAPI{matches: []models.Match{
		poolMatch("1", "1", ""),
		poolMatch("2", "1", "A"),
	}}
	svc := NewFixturesService(api, views.NewRegistry(), nil)

	page, err := svc.Query(context.Background(), FixturesQuery{SessionID: "s", TournamentID: tid, Round: "1", Pool: strPtr("")})

	require.NoError(t, err)
	require.Len(t, page.Matches, 1)
	assert.Equal(t, models.ID("1"), page.Matches[0].MatchID)
}

// supersedingAPI starts a second load of the same view while the first
// refresh is still in flight.
type supersedingAPI struct {
	*fakeAPI
	svc       FixturesService
	supersede bool
}

func (a *supersedingAPI) GetMatchFixtures(ctx context.Context, tournamentID models.ID) ([]models.Match, error) {
	old, err := a.fakeAPI.GetMatchFixtures(ctx, tournamentID)
	if a.supersede {
		a.supersede = false
		a.fakeAPI.mu.Lock()
		a.fakeAPI.matches = []models.Match{poolMatch("1", "1", "A"), poolMatch("2", "1", "A")}
		a.fakeAPI.mu.Unlock()
		if _, loadErr := a.svc.Load(ctx, "s", tournamentID); loadErr != nil {
			return nil, loadErr
		}
	}
	return old, err
}

func TestFixturesQuery_RefreshSupersededUsesLatestSnapshot(t *testing.T) {
	api := &supersedingAPI{fakeAPI: &fakeAPI{matches: []models.Match{poolMatch("1", "1", "A")}}}
	svc := NewFixturesService(api, views.NewRegistry(), nil)
	api.svc = svc

	_, err := svc.Query(context.Background(), FixturesQuery{SessionID: "s", TournamentID: tid})
	require.NoError(t, err)

	api.supersede = true
	page, err := svc.Query(context.Background(), FixturesQuery{SessionID: "s", TournamentID: tid, Refresh: true})

	require.NoError(t, err)
	assert.Len(t, page.Matches, 2, "the newer load's snapshot is shown")
	assert.Equal(t, 3, api.fetchCount())
}

func TestFixturesQuery_GroupByCourtSpansRounds(t *testing.T) {
	api := &fakeAPI{matches: []models.Match{
		onCourt(poolMatch("1", "1", "A"), 3, 1),
		onCourt(poolMatch("2", "2", "A"), 1, 2),
		onCourt(poolMatch("3", "2", "A"), 1, 1),
		poolMatch("4", "2", "A"),
	}}
	svc := NewFixturesService(api, views.NewRegistry(), nil)

	page, err := svc.Query(context.Background(), FixturesQuery{SessionID: "s", TournamentID: tid, GroupByCourt: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", models.UnassignedKey}, page.Courts.Keys())
	court1, ok := page.Courts.Get("1")
	require.True(t, ok)
	assert.Equal(t, models.ID("3"), court1.Matches[0].MatchID)
	assert.Empty(t, page.SelectedRound)
}

func TestFixturesQuery_Validation(t *testing.T) {
	svc := NewFixturesService(&fakeAPI{}, views.NewRegistry(), nil)
	_, err := svc.Query(context.Background(), FixturesQuery{Status: "done", Court: intPtr(0)})

	var verr models.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr, "tournament_id")
	assert.Contains(t, verr, "status")
	assert.Contains(t, verr, "court")
}

func finalizedErr() error {
	return &apiclient.APIError{Status: 400, Message: "Match score has already been finalized", Endpoint: "update-score"}
}

func TestUpdateScore_FinalizeConflictNeedsOverride(t *testing.T) {
	api := &fakeAPI{scoreErr: finalizedErr()}
	hub := &fakeHub{}
	svc := NewScoreService(api, views.NewRegistry(), hub, nil)

	err := svc.UpdateScore(context.Background(), "s", models.ScoreUpdate{TournamentID: tid, MatchID: "7", Score: "11-9", Final: true})

	assert.ErrorIs(t, err, ErrFinalizeConflict)
	assert.Empty(t, hub.types())
}

func TestUpdateScore_OverrideFailureIsNotAConflict(t *testing.T) {
	api := &fakeAPI{scoreErr: finalizedErr()}
	svc := NewScoreService(api, views.NewRegistry(), &fakeHub{}, nil)

	err := svc.UpdateScore(context.Background(), "s", models.ScoreUpdate{TournamentID: tid, MatchID: "7", Score: "11-9", Final: true, Override: true})

	assert.NotErrorIs(t, err, ErrFinalizeConflict)
	assert.ErrorIs(t, err, apiclient.ErrAlreadyFinalized)
}

func TestUpdateScore_RejectsMalformedScoreBeforeCallingAPI(t *testing.T) {
	api := &fakeAPI{}
	svc := NewScoreService(api, views.NewRegistry(), &fakeHub{}, nil)

	err := svc.UpdateScore(context.Background(), "s", models.ScoreUpdate{TournamentID: tid, MatchID: "7", Score: "eleven"})

	var verr models.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr, "score")
	assert.Empty(t, api.scores)
}

func TestUpdateScore_RefreshesAndBroadcasts(t *testing.T) {
	api := &fakeAPI{matches: []models.Match{poolMatch("7", "1", "A")}}
	hub := &fakeHub{}
	svc := NewScoreService(api, views.NewRegistry(), hub, nil)

	err := svc.UpdateScore(context.Background(), "s", models.ScoreUpdate{TournamentID: tid, MatchID: "7", Score: "11-9"})

	require.NoError(t, err)
	assert.Equal(t, 1, api.fetchCount())
	assert.Equal(t, []string{brackets.EventFixturesChanged}, hub.types())
	assert.Equal(t, "tournament_42", hub.messages[0].RoomID)
}

func TestUpdateStatus_Validation(t *testing.T) {
	svc := NewScoreService(&fakeAPI{}, views.NewRegistry(), &fakeHub{}, nil)

	err := svc.UpdateStatus(context.Background(), "s", "7", models.StatusUpdate{TournamentID: tid, Status: models.MatchPending})

	var verr models.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr, "status")
}

func TestCourtAssign_DefaultsToNextSlot(t *testing.T) {
	api := &fakeAPI{matches: []models.Match{
		onCourt(poolMatch("1", "1", "A"), 2, 1),
		onCourt(poolMatch("2", "1", "A"), 2, 4),
		poolMatch("3", "1", "A"),
	}}
	svc := NewCourtService(api, views.NewRegistry(), &fakeHub{}, nil, nil)

	got, err := svc.Assign(context.Background(), "s", tid, models.CourtAssignment{MatchID: "3", CourtNumber: 2})

	require.NoError(t, err)
	assert.Equal(t, 5, got.CourtOrder)
	require.Len(t, api.assignments, 1)
	assert.Equal(t, 5, api.assignments[0].CourtOrder)
}

func courtFixture() []models.Match {
	return []models.Match{
		onCourt(poolMatch("a", "1", "A"), 1, 1),
		onCourt(poolMatch("b", "1", "A"), 1, 2),
		onCourt(poolMatch("c", "1", "A"), 1, 3),
	}
}

func TestCourtReorder_Confirmed(t *testing.T) {
	api := &fakeAPI{matches: courtFixture()}
	hub := &fakeHub{}
	svc := NewCourtService(api, views.NewRegistry(), hub, nil, nil)

	res, err := svc.Reorder(context.Background(), ReorderInput{SessionID: "s", TournamentID: tid, Court: 1, ActiveID: "c", OverID: "a"})

	require.NoError(t, err)
	assert.Equal(t, views.OutcomeConfirmed, res.Outcome)
	assert.Equal(t, []models.ID{"c", "a", "b"}, res.Order)
	require.Len(t, api.reorders, 1)
	assert.Equal(t, []models.MatchOrder{{MatchID: "c", NewOrder: 1}, {MatchID: "a", NewOrder: 2}, {MatchID: "b", NewOrder: 3}}, api.reorders[0].MatchOrders)
	assert.Equal(t, []string{brackets.EventCourtReordered}, hub.types())
}

func TestCourtReorder_RevertRefetchesOnce(t *testing.T) {
	api := &fakeAPI{matches: courtFixture(), reorderErr: &apiclient.APIError{Status: 500, Message: "db down"}}
	hub := &fakeHub{}
	svc := NewCourtService(api, views.NewRegistry(), hub, nil, nil)

	res, err := svc.Reorder(context.Background(), ReorderInput{SessionID: "s", TournamentID: tid, Court: 1, ActiveID: "c", OverID: "a"})

	require.ErrorIs(t, err, views.ErrReorderReverted)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "db down", apiErr.Message)
	assert.Equal(t, views.OutcomeReverted, res.Outcome)
	assert.Equal(t, []models.ID{"a", "b", "c"}, res.Order)
	assert.Equal(t, 2, api.fetchCount(), "initial load plus exactly one refetch")
	assert.Equal(t, []string{brackets.EventCourtReordered, brackets.EventFixturesChanged}, hub.types())
}

func TestCourtReorder_Validation(t *testing.T) {
	svc := NewCourtService(&fakeAPI{}, views.NewRegistry(), &fakeHub{}, nil, nil)
	_, err := svc.Reorder(context.Background(), ReorderInput{SessionID: "s", TournamentID: tid})

	var verr models.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr, 3)
}

func TestStandingsAll(t *testing.T) {
	api := &fakeAPI{standings: map[models.StandingsKind][]models.Standing{
		models.StandingsPool:        {{TeamID: "1", Wins: 3}},
		models.StandingsOverall:     {{TeamID: "2"}, {TeamID: "1"}},
		models.StandingsSecondPlace: {{TeamID: "3"}},
	}}
	svc := NewStandingsService(api)

	set, err := svc.All(context.Background(), tid)

	require.NoError(t, err)
	assert.Len(t, set.Pool, 1)
	assert.Len(t, set.Overall, 2)
	assert.Len(t, set.SecondPlace, 1)
}

func TestStandingsAll_FailsWhenOneTableFails(t *testing.T) {
	svc := NewStandingsService(&fakeAPI{standingErr: errBoom})
	_, err := svc.All(context.Background(), tid)
	assert.ErrorIs(t, err, errBoom)
}

func TestStandingsGet_UnknownKind(t *testing.T) {
	svc := NewStandingsService(&fakeAPI{})
	_, err := svc.Get(context.Background(), tid, "weekly")
	assert.ErrorIs(t, err, ErrInvalidStandingsKind)
}

func TestKnockoutBracket(t *testing.T) {
	api := &fakeAPI{matches: []models.Match{
		{MatchID: "s2", BracketInfo: &models.BracketInfo{RoundNumber: 1, BracketPosition: 2}},
		{MatchID: "f", BracketInfo: &models.BracketInfo{RoundNumber: 2, BracketPosition: 1}},
		{MatchID: "s1", BracketInfo: &models.BracketInfo{RoundNumber: 1, BracketPosition: 1}},
		poolMatch("rr", "1", "A"),
	}}
	svc := NewKnockoutService(api, views.NewRegistry(), &fakeHub{}, nil)

	b, err := svc.Bracket(context.Background(), "s", tid)

	require.NoError(t, err)
	require.Len(t, b.Rounds, 2)
	assert.Equal(t, models.ID("s1"), b.Rounds[0].Matches[0].MatchID)
	assert.Equal(t, "Final", b.Rounds[1].Name)
}

func TestKnockoutFromMatches_RequiresSelection(t *testing.T) {
	svc := NewKnockoutService(&fakeAPI{}, views.NewRegistry(), &fakeHub{}, nil)
	err := svc.CreateFromMatches(context.Background(), "s", models.KnockoutFromMatchesRequest{TournamentID: tid})

	var verr models.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr, "match_ids")
}

func TestPlayerCheckIn_Broadcasts(t *testing.T) {
	api := &fakeAPI{}
	hub := &fakeHub{}
	svc := NewPlayerService(api, hub, nil)

	require.NoError(t, svc.SetCheckIn(context.Background(), tid, "p1", true))

	assert.True(t, api.checkIns["p1"])
	assert.Equal(t, []string{brackets.EventRosterChanged, brackets.EventFixturesChanged}, hub.types())
}

func TestPoolAddTeam_Validation(t *testing.T) {
	svc := NewPoolService(&fakeAPI{}, &fakeHub{}, nil)
	err := svc.AddTeam(context.Background(), tid, "", models.PoolTeam{})

	var verr models.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr, 2)
}

func TestSessionLifecycle(t *testing.T) {
	repo := newMemorySessions()
	registry := views.NewRegistry()
	svc := NewSessionService(repo, registry, nil)
	ctx := context.Background()

	session, err := svc.Start(ctx, "desk")
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	assert.Nil(t, session.TournamentID)

	session, err = svc.SelectTournament(ctx, session.ID, tid)
	require.NoError(t, err)
	require.NotNil(t, session.TournamentID)
	assert.Equal(t, tid, *session.TournamentID)
	assert.Equal(t, 1, registry.Len())

	session, err = svc.ClearTournament(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, session.TournamentID)
	assert.Equal(t, 0, registry.Len())

	require.NoError(t, svc.End(ctx, session.ID))
	_, err = svc.Current(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionPurgeIdle(t *testing.T) {
	repo := newMemorySessions()
	registry := views.NewRegistry()
	svc := NewSessionService(repo, registry, nil).(*sessionService)
	ctx := context.Background()

	old, err := svc.Start(ctx, "desk")
	require.NoError(t, err)
	_, err = svc.SelectTournament(ctx, old.ID, tid)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	n, err := svc.PurgeIdle(ctx, 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, registry.Len())
}

func newAuth(t *testing.T) AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	sessions := NewSessionService(newMemorySessions(), views.NewRegistry(), nil)
	return NewAuthService(AuthConfig{Operator: "desk", PasswordHash: string(hash), JWTSecret: "test-secret"}, sessions)
}

func TestAuth_LoginAndParse(t *testing.T) {
	auth := newAuth(t)

	res, err := auth.Login(context.Background(), LoginInput{Operator: "desk", Password: "s3cret"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	claims, err := auth.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "desk", claims.Operator)
	assert.Equal(t, res.Session.ID, claims.SessionID)
}

func TestAuth_WrongPassword(t *testing.T) {
	auth := newAuth(t)
	_, err := auth.Login(context.Background(), LoginInput{Operator: "desk", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_ExpiredToken(t *testing.T) {
	auth := newAuth(t).(*authService)
	auth.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	res, err := auth.Login(context.Background(), LoginInput{Operator: "desk", Password: "s3cret"})
	require.NoError(t, err)

	_, err = auth.ParseToken(res.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestAuth_TamperedToken(t *testing.T) {
	auth := newAuth(t)
	res, err := auth.Login(context.Background(), LoginInput{Operator: "desk", Password: "s3cret"})
	require.NoError(t, err)

	_, err = auth.ParseToken(res.Token + "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestExport_DisabledWithoutStorage(t *testing.T) {
	svc := NewExportService(&fakeAPI{}, NewStandingsService(&fakeAPI{}), nil, &memoryExports{}, nil)
	_, err := svc.Export(context.Background(), ExportInput{TournamentID: tid, Kind: models.ExportFixtures, Operator: "desk"})
	assert.ErrorIs(t, err, ErrExportsDisabled)
}

func TestExport_FixturesCSV(t *testing.T) {
	m := onCourt(poolMatch("1", "1", "A"), 2, 1)
	m.MatchResult = strPtr("11-7")
	api := &fakeAPI{matches: []models.Match{m}}
	up := &fakeUploader{}
	repo := &memoryExports{}
	svc := NewExportService(api, NewStandingsService(api), up, repo, nil)

	rec, err := svc.Export(context.Background(), ExportInput{TournamentID: tid, Kind: models.ExportFixtures, Operator: "desk"})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rec.ObjectKey, "exports/42/fixtures-"))
	assert.Equal(t, "https://files.test/"+rec.ObjectKey, rec.Location)
	assert.Equal(t, "desk", rec.CreatedBy)
	lines := strings.Split(strings.TrimSpace(up.objects[rec.ObjectKey]), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "match_id,stage,round"))
	assert.Contains(t, lines[1], "11-7")
	assert.Contains(t, lines[1], "A 1")
	assert.Len(t, repo.records, 1)
}

func TestExport_RecordFailureRemovesObject(t *testing.T) {
	api := &fakeAPI{}
	up := &fakeUploader{}
	svc := NewExportService(api, NewStandingsService(api), up, &memoryExports{err: errBoom}, nil)

	_, err := svc.Export(context.Background(), ExportInput{TournamentID: tid, Kind: models.ExportStandings, Operator: "desk"})

	require.True(t, errors.Is(err, errBoom))
	assert.Len(t, up.deleted, 1)
	assert.Empty(t, up.objects)
}
