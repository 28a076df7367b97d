package views

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-console/fixtures"
	"github.com/Dosada05/tournament-console/models"
)

// Phase is the state of the court reorder protocol:
// idle → optimistic → (confirmed | reverting) → idle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseOptimistic Phase = "optimistic"
	PhaseConfirmed  Phase = "confirmed"
	PhaseReverting  Phase = "reverting"
)

type Outcome string

const (
	OutcomeNoop      Outcome = "noop"
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeReverted  Outcome = "reverted"
)

// Persister saves a court's new match order.
type Persister func(ctx context.Context, tournamentID models.ID, req models.CourtReorder) error

// ReorderEvent is emitted on every phase transition.
type ReorderEvent struct {
	TournamentID models.ID   `json:"tournament_id"`
	Court        int         `json:"court_number"`
	Phase        Phase       `json:"phase"`
	Order        []models.ID `json:"order"`
}

type Observer func(ReorderEvent)

type ReorderInput struct {
	Court    int
	ActiveID models.ID
	OverID   models.ID
}

type ReorderResult struct {
	Outcome Outcome        `json:"outcome"`
	Order   []models.ID    `json:"order"`
	Court   []models.Match `json:"matches"`
}

// Reorder moves ActiveID to the slot held by OverID on the given court.
// The new order is applied to the snapshot before it is persisted. If
// persisting fails the optimistic order is discarded and the fixtures are
// fetched again exactly once; the persist error is returned wrapped in
// ErrReorderReverted.
func (v *View) Reorder(ctx context.Context, in ReorderInput, persist Persister, fetch Fetcher, notify Observer) (ReorderResult, error) {
	if notify == nil {
		notify = func(ReorderEvent) {}
	}

	v.mu.Lock()
	if in.ActiveID == in.OverID {
		var current []models.Match
		if v.snapshot != nil {
			current = fixtures.CourtMatches(*v.snapshot, in.Court)
		}
		v.mu.Unlock()
		return ReorderResult{Outcome: OutcomeNoop, Order: ids(current), Court: current}, nil
	}
	if v.snapshot == nil {
		v.mu.Unlock()
		return ReorderResult{}, ErrNotLoaded
	}
	current := fixtures.CourtMatches(*v.snapshot, in.Court)
	if v.phase != PhaseIdle {
		v.mu.Unlock()
		return ReorderResult{}, ErrReorderInProgress
	}
	from, to := indexOf(current, in.ActiveID), indexOf(current, in.OverID)
	if from < 0 || to < 0 {
		v.mu.Unlock()
		return ReorderResult{}, fmt.Errorf("%w: court %d", ErrMatchNotOnCourt, in.Court)
	}

	order := move(ids(current), from, to)
	previous := v.snapshot
	optimistic := withCourtOrder(*previous, order)
	v.snapshot = &optimistic
	v.phase = PhaseOptimistic
	tournamentID := v.tournamentID
	gen := v.generation
	v.mu.Unlock()

	notify(ReorderEvent{TournamentID: tournamentID, Court: in.Court, Phase: PhaseOptimistic, Order: order})

	req := models.CourtReorder{CourtNumber: in.Court, MatchOrders: make([]models.MatchOrder, len(order))}
	for i, id := range order {
		req.MatchOrders[i] = models.MatchOrder{MatchID: id, NewOrder: i + 1}
	}

	persistErr := persist(ctx, tournamentID, req)
	if persistErr == nil {
		v.setPhase(PhaseConfirmed)
		notify(ReorderEvent{TournamentID: tournamentID, Court: in.Court, Phase: PhaseConfirmed, Order: order})
		v.setPhase(PhaseIdle)
		return ReorderResult{Outcome: OutcomeConfirmed, Order: order, Court: fixtures.CourtMatches(optimistic, in.Court)}, nil
	}

	v.setPhase(PhaseReverting)
	notify(ReorderEvent{TournamentID: tournamentID, Court: in.Court, Phase: PhaseReverting, Order: order})

	matches, fetchErr := fetch(ctx, tournamentID)

	v.mu.Lock()
	restored := *previous
	if fetchErr == nil {
		restored = fixtures.Normalize(matches)
	}
	// A tournament switch during the round trip already dropped the snapshot.
	if v.generation == gen && v.tournamentID == tournamentID {
		v.generation++
		v.snapshot = &restored
	}
	v.phase = PhaseIdle
	v.mu.Unlock()

	court := fixtures.CourtMatches(restored, in.Court)
	notify(ReorderEvent{TournamentID: tournamentID, Court: in.Court, Phase: PhaseIdle, Order: ids(court)})

	err := fmt.Errorf("%w: %w", ErrReorderReverted, persistErr)
	if fetchErr != nil {
		err = fmt.Errorf("%w (reload failed: %v)", err, fetchErr)
	}
	return ReorderResult{Outcome: OutcomeReverted, Order: ids(court), Court: court}, err
}

func (v *View) setPhase(p Phase) {
	v.mu.Lock()
	v.phase = p
	v.mu.Unlock()
}

// withCourtOrder returns a copy of n where the matches in order carry their
// new 1-based court_order.
func withCourtOrder(n fixtures.Normalized, order []models.ID) fixtures.Normalized {
	slot := make(map[models.ID]int, len(order))
	for i, id := range order {
		slot[id] = i + 1
	}
	out := n.Clone()
	out.Each(func(m *models.Match) {
		if s, ok := slot[m.MatchID]; ok {
			s := s
			m.CourtOrder = &s
		}
	})
	return out
}

// move behaves like removing the element at from and inserting it at to.
func move(list []models.ID, from, to int) []models.ID {
	out := make([]models.ID, 0, len(list))
	item := list[from]
	for i, id := range list {
		if i == from {
			continue
		}
		out = append(out, id)
	}
	out = append(out[:to], append([]models.ID{item}, out[to:]...)...)
	return out
}

func indexOf(ms []models.Match, id models.ID) int {
	for i, m := range ms {
		if m.MatchID == id {
			return i
		}
	}
	return -1
}

func ids(ms []models.Match) []models.ID {
	out := make([]models.ID, len(ms))
	for i, m := range ms {
		out[i] = m.MatchID
	}
	return out
}
