package models

import "strings"

// RosterPlayer is a registered player as managed through /player-ops/players.
type RosterPlayer struct {
	ID           ID     `json:"id,omitempty"`
	TournamentID ID     `json:"tournament_id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Rating       *int   `json:"rating,omitempty"`
	CheckedIn    bool   `json:"checked_in"`
}

func (p RosterPlayer) Validate() error {
	v := ValidationErrors{}
	if p.TournamentID.IsZero() {
		v.add("tournament_id", "is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		v.add("name", "is required")
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		v.add("email", "is not a valid email address")
	}
	if p.Rating != nil && *p.Rating < 0 {
		v.add("rating", "must not be negative")
	}
	return v.err()
}

type PlayersResponse struct {
	Players []RosterPlayer `json:"players"`
}

// Pool is a round-robin group as managed through /match-ops/pools.
type Pool struct {
	ID           ID     `json:"id,omitempty"`
	TournamentID ID     `json:"tournament_id"`
	RoundID      ID     `json:"round_id,omitempty"`
	Name         string `json:"name"`
	Teams        []Team `json:"teams,omitempty"`
}

func (p Pool) Validate() error {
	v := ValidationErrors{}
	if p.TournamentID.IsZero() {
		v.add("tournament_id", "is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		v.add("name", "is required")
	}
	return v.err()
}

type PoolsResponse struct {
	Pools []Pool `json:"pools"`
}

type PoolTeam struct {
	TeamID ID `json:"team_id"`
}
