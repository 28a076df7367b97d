package models

import (
	"regexp"
	"sort"
	"strings"
)

var scorePattern = regexp.MustCompile(`^\s*\d+\s*-\s*\d+\s*$`)

// ValidationErrors maps a field name to a message shown next to that field.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

func (v ValidationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ScoreUpdate is the body of POST /update-score.
type ScoreUpdate struct {
	TournamentID ID     `json:"tournament_id"`
	MatchID      ID     `json:"match_id"`
	Score        string `json:"score"`
	Final        bool   `json:"final"`
	Override     bool   `json:"override"`
}

func (s ScoreUpdate) Validate() error {
	v := ValidationErrors{}
	if s.TournamentID.IsZero() {
		v.add("tournament_id", "is required")
	}
	if s.MatchID.IsZero() {
		v.add("match_id", "is required")
	}
	if !scorePattern.MatchString(s.Score) {
		v.add("score", `must look like "<int>-<int>"`)
	}
	return v.err()
}

// StatusUpdate is the body of POST /update-match-status/{match_id}.
type StatusUpdate struct {
	TournamentID ID               `json:"tournament_id"`
	Status       MatchStatusValue `json:"status"`
}

func (s StatusUpdate) Validate() error {
	v := ValidationErrors{}
	if s.TournamentID.IsZero() {
		v.add("tournament_id", "is required")
	}
	if s.Status != MatchOngoing && s.Status != MatchCompleted {
		v.add("status", `must be "on-going" or "completed"`)
	}
	return v.err()
}

// CourtAssignment is the body of POST /tournaments/{id}/court-assignments.
type CourtAssignment struct {
	MatchID     ID  `json:"match_id"`
	CourtNumber int `json:"court_number"`
	CourtOrder  int `json:"court_order"`
}

func (c CourtAssignment) Validate() error {
	v := ValidationErrors{}
	if c.MatchID.IsZero() {
		v.add("match_id", "is required")
	}
	if c.CourtNumber <= 0 {
		v.add("court_number", "must be a positive integer")
	}
	if c.CourtOrder <= 0 {
		v.add("court_order", "must be a positive integer")
	}
	return v.err()
}

type MatchOrder struct {
	MatchID  ID  `json:"match_id"`
	NewOrder int `json:"new_order"`
}

// CourtReorder is the body of PUT /tournaments/{id}/court-assignments/reorder.
type CourtReorder struct {
	CourtNumber int          `json:"court_number"`
	MatchOrders []MatchOrder `json:"match_orders"`
}

type KnockoutRequest struct {
	TournamentID  ID   `json:"tournament_id"`
	TeamsPerPool  int  `json:"teams_per_pool,omitempty"`
	IncludeSecond bool `json:"include_second_place,omitempty"`
}

func (k KnockoutRequest) Validate() error {
	v := ValidationErrors{}
	if k.TournamentID.IsZero() {
		v.add("tournament_id", "is required")
	}
	if k.TeamsPerPool < 0 {
		v.add("teams_per_pool", "must not be negative")
	}
	return v.err()
}

type KnockoutFromMatchesRequest struct {
	TournamentID ID   `json:"tournament_id"`
	MatchIDs     []ID `json:"match_ids"`
}

func (k KnockoutFromMatchesRequest) Validate() error {
	v := ValidationErrors{}
	if k.TournamentID.IsZero() {
		v.add("tournament_id", "is required")
	}
	if len(k.MatchIDs) == 0 {
		v.add("match_ids", "select at least one match")
	}
	return v.err()
}

type KnockoutCheck struct {
	Exists  bool    `json:"exists"`
	Matches []Match `json:"matches,omitempty"`
}
