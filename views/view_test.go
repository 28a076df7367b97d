package views

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Dosada05/tournament-console/fixtures"
	"github.com/Dosada05/tournament-console/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func courtMatch(id string, court, order int) models.Match {
	return models.Match{MatchID: models.ID(id), RoundID: "1", Pool: "A", CourtNumber: &court, CourtOrder: &order}
}

func staticFetcher(ms ...models.Match) (Fetcher, *int32) {
	var calls int32
	return func(ctx context.Context, id models.ID) ([]models.Match, error) {
		atomic.AddInt32(&calls, 1)
		return ms, nil
	}, &calls
}

func courtOrder(t *testing.T, v *View, court int) []models.ID {
	t.Helper()
	n, _, ok := v.Snapshot()
	require.True(t, ok)
	return ids(fixtures.CourtMatches(n, court))
}

func TestView_LoadRequiresTournament(t *testing.T) {
	v := New("")
	fetch, calls := staticFetcher()

	_, err := v.Load(context.Background(), fetch)

	assert.ErrorIs(t, err, ErrNoTournament)
	assert.Equal(t, int32(0), *calls)
}

func TestView_StaleResponseIsDropped(t *testing.T) {
	v := New("t1")
	release := make(chan struct{})
	started := make(chan struct{})

	slow := func(ctx context.Context, id models.ID) ([]models.Match, error) {
		close(started)
		<-release
		return []models.Match{courtMatch("old", 1, 1)}, nil
	}
	fast, _ := staticFetcher(courtMatch("new", 1, 1))

	errc := make(chan error, 1)
	go func() {
		_, err := v.Load(context.Background(), slow)
		errc <- err
	}()
	<-started

	_, err := v.Load(context.Background(), fast)
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-errc, ErrStaleResponse)
	assert.Equal(t, []models.ID{"new"}, courtOrder(t, v, 1))
}

func TestView_TournamentSwitchDropsInFlightLoad(t *testing.T) {
	v := New("t1")
	release := make(chan struct{})
	started := make(chan struct{})
	slow := func(ctx context.Context, id models.ID) ([]models.Match, error) {
		close(started)
		<-release
		return []models.Match{courtMatch("from-t1", 1, 1)}, nil
	}

	errc := make(chan error, 1)
	go func() {
		_, err := v.Load(context.Background(), slow)
		errc <- err
	}()
	<-started
	v.SetTournament("t2")
	close(release)

	assert.ErrorIs(t, <-errc, ErrStaleResponse)
	_, _, ok := v.Snapshot()
	assert.False(t, ok)
	assert.Equal(t, models.ID("t2"), v.TournamentID())
}

func TestView_ReorderConfirmed(t *testing.T) {
	v := New("t1")
	fetch, calls := staticFetcher(courtMatch("A", 1, 1), courtMatch("B", 1, 2), courtMatch("C", 1, 3))
	_, err := v.Load(context.Background(), fetch)
	require.NoError(t, err)

	var sent models.CourtReorder
	persist := func(ctx context.Context, id models.ID, req models.CourtReorder) error {
		sent = req
		return nil
	}
	var phases []Phase
	notify := func(e ReorderEvent) { phases = append(phases, e.Phase) }

	res, err := v.Reorder(context.Background(), ReorderInput{Court: 1, ActiveID: "A", OverID: "B"}, persist, fetch, notify)

	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, res.Outcome)
	assert.Equal(t, []models.ID{"B", "A", "C"}, res.Order)
	assert.Equal(t, []models.ID{"B", "A", "C"}, courtOrder(t, v, 1))
	assert.Equal(t, 1, sent.CourtNumber)
	assert.Equal(t, []models.MatchOrder{{MatchID: "B", NewOrder: 1}, {MatchID: "A", NewOrder: 2}, {MatchID: "C", NewOrder: 3}}, sent.MatchOrders)
	assert.Equal(t, []Phase{PhaseOptimistic, PhaseConfirmed}, phases)
	assert.Equal(t, int32(1), *calls, "confirmed reorder must not refetch")
	assert.Equal(t, PhaseIdle, v.Phase())
}

func TestView_ReorderRevertsToServerState(t *testing.T) {
	v := New("t1")
	initial, _ := staticFetcher(courtMatch("A", 1, 1), courtMatch("B", 1, 2), courtMatch("C", 1, 3))
	_, err := v.Load(context.Background(), initial)
	require.NoError(t, err)

	// The server's view differs from both the old and the optimistic order.
	refetch, calls := staticFetcher(courtMatch("C", 1, 1), courtMatch("A", 1, 2), courtMatch("B", 1, 3))
	persistErr := errors.New("upstream down")
	persist := func(ctx context.Context, id models.ID, req models.CourtReorder) error { return persistErr }
	var phases []Phase
	notify := func(e ReorderEvent) { phases = append(phases, e.Phase) }

	res, err := v.Reorder(context.Background(), ReorderInput{Court: 1, ActiveID: "A", OverID: "B"}, persist, refetch, notify)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReorderReverted)
	assert.ErrorIs(t, err, persistErr)
	assert.Equal(t, OutcomeReverted, res.Outcome)
	assert.Equal(t, []models.ID{"C", "A", "B"}, courtOrder(t, v, 1))
	assert.Equal(t, []models.ID{"C", "A", "B"}, res.Order)
	assert.Equal(t, int32(1), *calls, "a failed reorder triggers exactly one refetch")
	assert.Equal(t, []Phase{PhaseOptimistic, PhaseReverting, PhaseIdle}, phases)
}

func TestView_ReorderRevertFallsBackWhenRefetchFails(t *testing.T) {
	v := New("t1")
	initial, _ := staticFetcher(courtMatch("A", 1, 1), courtMatch("B", 1, 2))
	_, err := v.Load(context.Background(), initial)
	require.NoError(t, err)

	persist := func(ctx context.Context, id models.ID, req models.CourtReorder) error { return errors.New("boom") }
	failing := func(ctx context.Context, id models.ID) ([]models.Match, error) { return nil, errors.New("still down") }

	_, err = v.Reorder(context.Background(), ReorderInput{Court: 1, ActiveID: "B", OverID: "A"}, persist, failing, nil)

	assert.ErrorIs(t, err, ErrReorderReverted)
	assert.Equal(t, []models.ID{"A", "B"}, courtOrder(t, v, 1))
}

func TestView_ReorderOntoItselfIsNoop(t *testing.T) {
	v := New("t1")
	fetch, calls := staticFetcher(courtMatch("A", 1, 1), courtMatch("B", 1, 2))
	_, err := v.Load(context.Background(), fetch)
	require.NoError(t, err)

	persisted := false
	persist := func(ctx context.Context, id models.ID, req models.CourtReorder) error {
		persisted = true
		return nil
	}

	res, err := v.Reorder(context.Background(), ReorderInput{Court: 1, ActiveID: "A", OverID: "A"}, persist, fetch, nil)

	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, res.Outcome)
	assert.False(t, persisted)
	assert.Equal(t, int32(1), *calls)
	assert.Equal(t, []models.ID{"A", "B"}, courtOrder(t, v, 1))
}

func TestView_ReorderUnknownMatch(t *testing.T) {
	v := New("t1")
	fetch, _ := staticFetcher(courtMatch("A", 1, 1), courtMatch("B", 2, 1))
	_, err := v.Load(context.Background(), fetch)
	require.NoError(t, err)

	persist := func(ctx context.Context, id models.ID, req models.CourtReorder) error {
		t.Fatal("persist must not be called")
		return nil
	}

	_, err = v.Reorder(context.Background(), ReorderInput{Court: 1, ActiveID: "A", OverID: "B"}, persist, fetch, nil)

	assert.ErrorIs(t, err, ErrMatchNotOnCourt)
}

func TestMove(t *testing.T) {
	list := []models.ID{"A", "B", "C", "D"}
	assert.Equal(t, []models.ID{"B", "C", "A", "D"}, move(list, 0, 2))
	assert.Equal(t, []models.ID{"D", "A", "B", "C"}, move(list, 3, 0))
	assert.Equal(t, []models.ID{"A", "B", "C", "D"}, list)
}

func TestRegistry_ReusesViewPerSession(t *testing.T) {
	r := NewRegistry()
	a := r.For("s1", "t1")
	b := r.For("s1", "t2")

	assert.Same(t, a, b)
	assert.Equal(t, models.ID("t2"), b.TournamentID())
	assert.NotSame(t, a, r.For("s2", "t1"))

	r.Drop("s1")
	assert.Equal(t, 1, r.Len())
}
