package models

import (
	"errors"
	"fmt"
)

type MatchStatusValue string

const (
	MatchPending   MatchStatusValue = "pending"
	MatchOngoing   MatchStatusValue = "on-going"
	MatchCompleted MatchStatusValue = "completed"
)

// UnassignedKey is the bucket used for matches without a round, pool or court.
const UnassignedKey = "unassigned"

var ErrInvalidMatch = errors.New("invalid match payload")

type Player struct {
	PlayerID  ID     `json:"player_id,omitempty"`
	Name      string `json:"name"`
	CheckedIn bool   `json:"checked_in"`
}

type Team struct {
	TeamID    ID       `json:"team_id"`
	Name      string   `json:"name"`
	CheckedIn bool     `json:"checked_in"`
	Players   []Player `json:"players,omitempty"`
}

type MatchStatus struct {
	Status       MatchStatusValue `json:"status"`
	IsFinal      bool             `json:"is_final"`
	WinnerTeamID *ID              `json:"winner_team_id,omitempty"`
}

type BracketInfo struct {
	RoundNumber     int `json:"round_number"`
	BracketPosition int `json:"bracket_position"`
	Successor       *ID `json:"successor,omitempty"`
}

// Match is a fixture as served by GET /get-match-fixtures. The fields after
// BracketInfo are derived on every normalization pass and never sent back.
type Match struct {
	MatchID     ID           `json:"match_id"`
	RoundID     ID           `json:"round_id,omitempty"`
	RoundName   string       `json:"round_name,omitempty"`
	Pool        string       `json:"pool,omitempty"`
	Team1       *Team        `json:"team1,omitempty"`
	Team2       *Team        `json:"team2,omitempty"`
	MatchResult *string      `json:"match_result,omitempty"`
	MatchStatus *MatchStatus `json:"match_status,omitempty"`
	CourtNumber *int         `json:"court_number,omitempty"`
	CourtOrder  *int         `json:"court_order,omitempty"`
	BracketInfo *BracketInfo `json:"bracket_info,omitempty"`

	Team1Score   int              `json:"team1Score"`
	Team2Score   int              `json:"team2Score"`
	Status       MatchStatusValue `json:"status"`
	WinnerTeamID *ID              `json:"winner_team_id"`
}

// IsKnockout reports whether the match belongs to a bracket. bracket_info is
// the only discriminator.
func (m Match) IsKnockout() bool { return m.BracketInfo != nil }

func (m Match) HasCourt() bool { return m.CourtNumber != nil }

func (m Match) BothCheckedIn() bool {
	return m.Team1 != nil && m.Team2 != nil && m.Team1.CheckedIn && m.Team2.CheckedIn
}

// TeamName returns the display name of a side, "TBD" when not yet seeded.
func TeamName(t *Team) string {
	if t == nil || t.Name == "" {
		return "TBD"
	}
	return t.Name
}

// Validate checks the fields the console cannot render without.
func (m Match) Validate() error {
	if m.MatchID.IsZero() {
		return fmt.Errorf("%w: match_id is required", ErrInvalidMatch)
	}
	return nil
}

// Sanitize drops field values the console cannot use, so one odd match does
// not hide the rest of the fixtures. It returns a description of each value
// it dropped.
func (m *Match) Sanitize() []string {
	var dropped []string
	if m.CourtNumber != nil && *m.CourtNumber <= 0 {
		dropped = append(dropped, fmt.Sprintf("non-positive court_number %d", *m.CourtNumber))
		m.CourtNumber = nil
		m.CourtOrder = nil
	}
	if m.MatchStatus != nil {
		switch m.MatchStatus.Status {
		case "", MatchPending, MatchOngoing, MatchCompleted:
		default:
			dropped = append(dropped, fmt.Sprintf("unknown status %q", m.MatchStatus.Status))
			m.MatchStatus.Status = ""
		}
	}
	return dropped
}

type FixturesResponse struct {
	Matches []Match `json:"matches"`
}
