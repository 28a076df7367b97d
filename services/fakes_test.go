package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Dosada05/tournament-console/brackets"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/repositories"
	"github.com/Dosada05/tournament-console/storage"
)

// fakeAPI answers from in-memory data; nil hooks succeed.
type fakeAPI struct {
	mu          sync.Mutex
	matches     []models.Match
	fetches     int
	fetchErr    error
	scoreErr    error
	reorderErr  error
	standings   map[models.StandingsKind][]models.Standing
	standingErr error

	scores      []models.ScoreUpdate
	statuses    []models.StatusUpdate
	assignments []models.CourtAssignment
	reorders    []models.CourtReorder
	checkIns    map[models.ID]bool
}

func (f *fakeAPI) GetMatchFixtures(ctx context.Context, tournamentID models.ID) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]models.Match(nil), f.matches...), nil
}

func (f *fakeAPI) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeAPI) UpdateScore(ctx context.Context, in models.ScoreUpdate) error {
	f.scores = append(f.scores, in)
	return f.scoreErr
}

func (f *fakeAPI) UpdateMatchStatus(ctx context.Context, matchID models.ID, in models.StatusUpdate) error {
	f.statuses = append(f.statuses, in)
	return nil
}

func (f *fakeAPI) AssignCourt(ctx context.Context, tournamentID models.ID, in models.CourtAssignment) error {
	f.assignments = append(f.assignments, in)
	return nil
}

func (f *fakeAPI) ReorderCourt(ctx context.Context, tournamentID models.ID, in models.CourtReorder) error {
	f.reorders = append(f.reorders, in)
	return f.reorderErr
}

func (f *fakeAPI) GetStandings(ctx context.Context, tournamentID models.ID, kind models.StandingsKind) ([]models.Standing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.standingErr != nil && kind == models.StandingsOverall {
		return nil, f.standingErr
	}
	return f.standings[kind], nil
}

func (f *fakeAPI) CreateKnockout(ctx context.Context, in models.KnockoutRequest) error { return nil }

func (f *fakeAPI) CreateKnockoutFromMatches(ctx context.Context, in models.KnockoutFromMatchesRequest) error {
	return nil
}

func (f *fakeAPI) CheckKnockout(ctx context.Context, tournamentID models.ID) (models.KnockoutCheck, error) {
	return models.KnockoutCheck{}, nil
}

func (f *fakeAPI) DeleteKnockout(ctx context.Context, tournamentID models.ID) error { return nil }

func (f *fakeAPI) ListPlayers(ctx context.Context, tournamentID models.ID) ([]models.RosterPlayer, error) {
	return nil, nil
}

func (f *fakeAPI) CreatePlayer(ctx context.Context, in models.RosterPlayer) (models.RosterPlayer, error) {
	in.ID = "p-1"
	return in, nil
}

func (f *fakeAPI) UpdatePlayer(ctx context.Context, playerID models.ID, in models.RosterPlayer) (models.RosterPlayer, error) {
	in.ID = playerID
	return in, nil
}

func (f *fakeAPI) DeletePlayer(ctx context.Context, playerID models.ID) error { return nil }

func (f *fakeAPI) SetPlayerCheckIn(ctx context.Context, playerID models.ID, checkedIn bool) error {
	if f.checkIns == nil {
		f.checkIns = make(map[models.ID]bool)
	}
	f.checkIns[playerID] = checkedIn
	return nil
}

func (f *fakeAPI) ListPools(ctx context.Context, tournamentID models.ID) ([]models.Pool, error) {
	return nil, nil
}

func (f *fakeAPI) CreatePool(ctx context.Context, in models.Pool) (models.Pool, error) {
	in.ID = "pool-1"
	return in, nil
}

func (f *fakeAPI) DeletePool(ctx context.Context, poolID models.ID) error { return nil }

func (f *fakeAPI) AddTeamToPool(ctx context.Context, poolID models.ID, in models.PoolTeam) error {
	return nil
}

type fakeHub struct {
	mu       sync.Mutex
	messages []brackets.WebSocketMessage
}

func (h *fakeHub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, message.(brackets.WebSocketMessage))
}

func (h *fakeHub) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.messages))
	for i, m := range h.messages {
		out[i] = m.Type
	}
	return out
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]*models.ConsoleSession
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]*models.ConsoleSession)}
}

func (m *memorySessions) Create(ctx context.Context, s *models.ConsoleSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return repositories.ErrSessionConflict
	}
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memorySessions) GetByID(ctx context.Context, id string) (*models.ConsoleSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memorySessions) SetTournament(ctx context.Context, id string, tournamentID *models.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	s.TournamentID = tournamentID
	s.UpdatedAt = time.Now()
	return nil
}

func (m *memorySessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return repositories.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memorySessions) DeleteIdle(ctx context.Context, before time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(before) {
			ids = append(ids, id)
			delete(m.sessions, id)
		}
	}
	return ids, nil
}

type memoryExports struct {
	records []*models.Export
	err     error
}

func (m *memoryExports) Create(ctx context.Context, e *models.Export) error {
	if m.err != nil {
		return m.err
	}
	e.ID = len(m.records) + 1
	e.CreatedAt = time.Now()
	m.records = append(m.records, e)
	return nil
}

func (m *memoryExports) ListByTournament(ctx context.Context, tournamentID models.ID, limit int) ([]*models.Export, error) {
	var out []*models.Export
	for _, e := range m.records {
		if e.TournamentID == tournamentID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeUploader struct {
	objects map[string]string
	deleted []string
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.objects == nil {
		u.objects = make(map[string]string)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.objects[key] = string(raw)
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key), ETag: "etag"}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.deleted = append(u.deleted, key)
	delete(u.objects, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string { return "https://files.test/" + key }

var errBoom = errors.New("boom")

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func poolMatch(id, round, pool string) models.Match {
	return models.Match{
		MatchID: models.ID(id),
		RoundID: models.ID(round),
		Pool:    pool,
		Team1:   &models.Team{TeamID: models.ID(id + "-a"), Name: "A " + id},
		Team2:   &models.Team{TeamID: models.ID(id + "-b"), Name: "B " + id},
	}
}

func onCourt(m models.Match, court, order int) models.Match {
	m.CourtNumber = intPtr(court)
	m.CourtOrder = intPtr(order)
	return m
}
