package models

import "time"

// ConsoleSession is an operator's console session. TournamentID is the
// "current tournament" every screen works against until it is cleared.
type ConsoleSession struct {
	ID           string    `json:"id" db:"id"`
	Operator     string    `json:"operator" db:"operator"`
	TournamentID *ID       `json:"tournament_id,omitempty" db:"tournament_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type ExportKind string

const (
	ExportFixtures  ExportKind = "fixtures"
	ExportStandings ExportKind = "standings"
)

func (k ExportKind) Valid() bool {
	return k == ExportFixtures || k == ExportStandings
}

// Export records a CSV uploaded to object storage.
type Export struct {
	ID           int        `json:"id" db:"id"`
	TournamentID ID         `json:"tournament_id" db:"tournament_id"`
	Kind         ExportKind `json:"kind" db:"kind"`
	ObjectKey    string     `json:"object_key" db:"object_key"`
	Location     string     `json:"location" db:"location"`
	ETag         string     `json:"etag,omitempty" db:"etag"`
	CreatedBy    string     `json:"created_by" db:"created_by"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
