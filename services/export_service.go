package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Dosada05/tournament-console/fixtures"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/repositories"
	"github.com/Dosada05/tournament-console/storage"
	"github.com/google/uuid"
)

type ExportService interface {
	// Export renders a CSV, uploads it and records the upload.
	Export(ctx context.Context, in ExportInput) (*models.Export, error)
	List(ctx context.Context, tournamentID models.ID, limit int) ([]*models.Export, error)
}

type ExportInput struct {
	TournamentID models.ID
	Kind         models.ExportKind
	Operator     string
}

type exportService struct {
	api       TournamentAPI
	standings StandingsService
	uploader  storage.FileUploader
	repo      repositories.ExportRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewExportService builds the export service. A nil uploader disables
// Export while List keeps working.
func NewExportService(api TournamentAPI, standings StandingsService, uploader storage.FileUploader, repo repositories.ExportRepository, logger *slog.Logger) ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &exportService{api: api, standings: standings, uploader: uploader, repo: repo, logger: logger, now: time.Now}
}

func (s *exportService) Export(ctx context.Context, in ExportInput) (*models.Export, error) {
	if err := requireTournament(in.TournamentID); err != nil {
		return nil, err
	}
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExportKind, in.Kind)
	}
	if s.uploader == nil {
		return nil, ErrExportsDisabled
	}

	var (
		body []byte
		err  error
	)
	switch in.Kind {
	case models.ExportFixtures:
		body, err = s.fixturesCSV(ctx, in.TournamentID)
	case models.ExportStandings:
		body, err = s.standingsCSV(ctx, in.TournamentID)
	}
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("exports/%s/%s-%s.csv", in.TournamentID, in.Kind, uuid.NewString())
	uploaded, err := s.uploader.Upload(ctx, key, "text/csv", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("upload %s export: %w", in.Kind, err)
	}

	record := &models.Export{
		TournamentID: in.TournamentID,
		Kind:         in.Kind,
		ObjectKey:    uploaded.Key,
		Location:     uploaded.Location,
		ETag:         uploaded.ETag,
		CreatedBy:    in.Operator,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if delErr := s.uploader.Delete(ctx, uploaded.Key); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned export object", "key", uploaded.Key, "error", delErr)
		}
		return nil, fmt.Errorf("record %s export: %w", in.Kind, err)
	}

	s.logger.InfoContext(ctx, "export uploaded",
		"tournament_id", in.TournamentID.String(), "kind", string(in.Kind), "key", record.ObjectKey, "bytes", len(body))
	return record, nil
}

func (s *exportService) List(ctx context.Context, tournamentID models.ID, limit int) ([]*models.Export, error) {
	if err := requireTournament(tournamentID); err != nil {
		return nil, err
	}
	return s.repo.ListByTournament(ctx, tournamentID, limit)
}

var fixturesHeader = []string{
	"match_id", "stage", "round", "pool", "bracket_position",
	"court_number", "court_order", "team1", "team2", "score", "status", "final", "winner_team_id",
}

func (s *exportService) fixturesCSV(ctx context.Context, tournamentID models.ID) ([]byte, error) {
	matches, err := s.api.GetMatchFixtures(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("fetch fixtures for export: %w", err)
	}
	n := fixtures.Normalize(matches)

	rows := [][]string{fixturesHeader}
	for _, key := range fixtures.SortedRoundKeys(n.Rounds) {
		round := n.Rounds[key]
		for _, m := range round.All() {
			rows = append(rows, fixtureRow(m, "pool", round.Name))
		}
	}
	for _, m := range n.Knockouts {
		rows = append(rows, fixtureRow(m, "knockout", m.RoundName))
	}
	return writeCSV(rows)
}

func fixtureRow(m models.Match, stage, round string) []string {
	position := ""
	if m.BracketInfo != nil {
		position = strconv.Itoa(m.BracketInfo.BracketPosition)
		if round == "" {
			round = "Round " + strconv.Itoa(m.BracketInfo.RoundNumber)
		}
	}
	score := ""
	if m.MatchResult != nil {
		score = fmt.Sprintf("%d-%d", m.Team1Score, m.Team2Score)
	}
	final := m.MatchStatus != nil && m.MatchStatus.IsFinal
	winner := ""
	if m.WinnerTeamID != nil {
		winner = m.WinnerTeamID.String()
	}
	return []string{
		m.MatchID.String(), stage, round, m.Pool, position,
		optInt(m.CourtNumber), optInt(m.CourtOrder),
		models.TeamName(m.Team1), models.TeamName(m.Team2),
		score, string(m.Status), strconv.FormatBool(final), winner,
	}
}

var standingsHeader = []string{
	"table", "pool", "rank", "team_id", "team", "played", "wins", "losses", "points_for", "points_against", "point_diff",
}

func (s *exportService) standingsCSV(ctx context.Context, tournamentID models.ID) ([]byte, error) {
	set, err := s.standings.All(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("fetch standings for export: %w", err)
	}
	rows := [][]string{standingsHeader}
	for _, table := range []struct {
		kind models.StandingsKind
		rows []models.Standing
	}{
		{models.StandingsPool, set.Pool},
		{models.StandingsOverall, set.Overall},
		{models.StandingsSecondPlace, set.SecondPlace},
	} {
		for _, r := range table.rows {
			rows = append(rows, []string{
				string(table.kind), r.Pool, strconv.Itoa(r.Rank), r.TeamID.String(), r.TeamName,
				strconv.Itoa(r.MatchesPlayed), strconv.Itoa(r.Wins), strconv.Itoa(r.Losses),
				strconv.Itoa(r.PointsFor), strconv.Itoa(r.PointsAgainst), strconv.Itoa(r.PointDiff),
			})
		}
	}
	return writeCSV(rows)
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func optInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
