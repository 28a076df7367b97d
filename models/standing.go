package models

type StandingsKind string

const (
	StandingsPool        StandingsKind = "pool"
	StandingsOverall     StandingsKind = "overall"
	StandingsSecondPlace StandingsKind = "second-place"
)

func (k StandingsKind) Valid() bool {
	switch k {
	case StandingsPool, StandingsOverall, StandingsSecondPlace:
		return true
	}
	return false
}

// Standing is one row of a standings table. The API computes every number;
// the console only renders them.
type Standing struct {
	TeamID        ID     `json:"team_id"`
	TeamName      string `json:"team_name"`
	Pool          string `json:"pool,omitempty"`
	Rank          int    `json:"rank,omitempty"`
	MatchesPlayed int    `json:"matches_played"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	PointsFor     int    `json:"points_for"`
	PointsAgainst int    `json:"points_against"`
	PointDiff     int    `json:"point_diff"`
}

type StandingsResponse struct {
	Standings []Standing `json:"standings"`
}

// StandingsSet holds the three tables shown on the standings screen.
type StandingsSet struct {
	Pool        []Standing `json:"pool"`
	Overall     []Standing `json:"overall"`
	SecondPlace []Standing `json:"second_place"`
}
