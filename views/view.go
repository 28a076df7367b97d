// Package views holds the fixtures state a console session is looking at.
// A View owns one tournament's normalized snapshot, discards responses that
// were superseded by a newer load, and runs the optimistic court reorder.
package views

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Dosada05/tournament-console/fixtures"
	"github.com/Dosada05/tournament-console/models"
)

var (
	ErrNoTournament      = errors.New("no tournament selected")
	ErrNotLoaded         = errors.New("fixtures not loaded")
	ErrStaleResponse     = errors.New("fixtures response superseded by a newer request")
	ErrMatchNotOnCourt   = errors.New("match is not on this court")
	ErrReorderInProgress = errors.New("another reorder is still in progress")
	ErrReorderReverted   = errors.New("court reorder was not saved; order reloaded from server")
)

// Fetcher loads every match of a tournament.
type Fetcher func(ctx context.Context, tournamentID models.ID) ([]models.Match, error)

// View is safe for concurrent use.
type View struct {
	mu           sync.Mutex
	tournamentID models.ID
	generation   uint64
	snapshot     *fixtures.Normalized
	loadedAt     time.Time
	phase        Phase
}

func New(tournamentID models.ID) *View {
	return &View{tournamentID: tournamentID, phase: PhaseIdle}
}

func (v *View) TournamentID() models.ID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tournamentID
}

// SetTournament switches the view to another tournament. Loads still in
// flight for the previous one are ignored when they return.
func (v *View) SetTournament(id models.ID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.tournamentID == id {
		return
	}
	v.tournamentID = id
	v.generation++
	v.snapshot = nil
	v.loadedAt = time.Time{}
}

// Clear forgets the tournament and its snapshot.
func (v *View) Clear() {
	v.SetTournament("")
}

// Snapshot returns a copy of the last applied fixtures.
func (v *View) Snapshot() (fixtures.Normalized, time.Time, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snapshot == nil {
		return fixtures.Normalized{}, time.Time{}, false
	}
	return v.snapshot.Clone(), v.loadedAt, true
}

func (v *View) Phase() Phase {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.phase
}

// Load fetches the tournament's matches and replaces the snapshot. When a
// newer Load, a tournament switch or a reorder revert happened while this
// one was in flight, the response is dropped and ErrStaleResponse returned.
func (v *View) Load(ctx context.Context, fetch Fetcher) (fixtures.Normalized, error) {
	v.mu.Lock()
	if v.tournamentID.IsZero() {
		v.mu.Unlock()
		return fixtures.Normalized{}, ErrNoTournament
	}
	v.generation++
	gen := v.generation
	id := v.tournamentID
	v.mu.Unlock()

	matches, err := fetch(ctx, id)
	if err != nil {
		return fixtures.Normalized{}, err
	}
	normalized := fixtures.Normalize(matches)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.generation != gen {
		return fixtures.Normalized{}, ErrStaleResponse
	}
	v.snapshot = &normalized
	v.loadedAt = time.Now()
	return normalized.Clone(), nil
}

// Ensure returns the current snapshot, loading it first when there is none.
func (v *View) Ensure(ctx context.Context, fetch Fetcher) (fixtures.Normalized, error) {
	if n, _, ok := v.Snapshot(); ok {
		return n, nil
	}
	n, err := v.Load(ctx, fetch)
	if errors.Is(err, ErrStaleResponse) {
		if latest, _, ok := v.Snapshot(); ok {
			return latest, nil
		}
	}
	return n, err
}
