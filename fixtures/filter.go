package fixtures

import (
	"sort"
	"strconv"

	"github.com/Dosada05/tournament-console/models"
)

// Predicate selects matches for a particular screen.
type Predicate func(models.Match) bool

// FilterMatches returns the matches of one round, optionally limited to one
// pool, that satisfy pred. Pools are visited in first-seen order and matches
// keep their insertion order. An unknown round yields an empty list. An empty
// pool id selects the matches filed outside any pool.
func FilterMatches(rounds map[string]*Round, roundID string, poolID *string, pred Predicate) []models.Match {
	out := make([]models.Match, 0)
	round, ok := rounds[roundID]
	if !ok {
		return out
	}
	if pred == nil {
		pred = Any
	}

	pools := round.PoolOrder
	if poolID != nil {
		pools = []string{PoolKey(models.Match{Pool: *poolID})}
	}
	for _, pool := range pools {
		for _, m := range round.Pools[pool] {
			if pred(m) {
				out = append(out, m)
			}
		}
	}
	return out
}

// CourtGroup is the ordered match list of one court.
type CourtGroup struct {
	Key         string         `json:"court"`
	CourtNumber *int           `json:"court_number,omitempty"`
	Matches     []models.Match `json:"matches"`
}

// CourtGroups is ordered: numeric courts ascending, "unassigned" last.
type CourtGroups []CourtGroup

func (g CourtGroups) Keys() []string {
	keys := make([]string, len(g))
	for i, c := range g {
		keys[i] = c.Key
	}
	return keys
}

// Get returns the group stored under key.
func (g CourtGroups) Get(key string) (CourtGroup, bool) {
	for _, c := range g {
		if c.Key == key {
			return c, true
		}
	}
	return CourtGroup{}, false
}

// CourtKey is the grouping key of a match: its court number or "unassigned".
func CourtKey(m models.Match) string {
	if m.CourtNumber == nil {
		return models.UnassignedKey
	}
	return strconv.Itoa(*m.CourtNumber)
}

// GroupByCourt buckets matches by court. Within a court, matches are ordered
// by court_order; matches without one follow in their input order.
func GroupByCourt(matches []models.Match) CourtGroups {
	index := make(map[string]int)
	var groups CourtGroups
	for _, m := range matches {
		key := CourtKey(m)
		i, ok := index[key]
		if !ok {
			g := CourtGroup{Key: key}
			if m.CourtNumber != nil {
				n := *m.CourtNumber
				g.CourtNumber = &n
			}
			groups = append(groups, g)
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].Matches = append(groups[i].Matches, m)
	}

	for i := range groups {
		sortByCourtOrder(groups[i].Matches)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].CourtNumber, groups[j].CourtNumber
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	if groups == nil {
		groups = CourtGroups{}
	}
	return groups
}

func sortByCourtOrder(ms []models.Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i].CourtOrder, ms[j].CourtOrder
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

// CourtMatches returns the matches currently on court, in play order, across
// every round and the knockout bracket.
func CourtMatches(n Normalized, court int) []models.Match {
	var out []models.Match
	for _, m := range n.Matches() {
		if m.CourtNumber != nil && *m.CourtNumber == court {
			out = append(out, m)
		}
	}
	sortByCourtOrder(out)
	return out
}

// NextCourtOrder is the 1-based slot a newly assigned match takes on court.
func NextCourtOrder(n Normalized, court int) int {
	ms := CourtMatches(n, court)
	next := len(ms) + 1
	for _, m := range ms {
		if m.CourtOrder != nil && *m.CourtOrder >= next {
			next = *m.CourtOrder + 1
		}
	}
	return next
}

func Any(models.Match) bool { return true }

func HasCourt(m models.Match) bool { return m.HasCourt() }

func Unassigned(m models.Match) bool { return !m.HasCourt() }

func BothCheckedIn(m models.Match) bool { return m.BothCheckedIn() }

// ReadyForCourt selects matches waiting for a court with both teams present.
func ReadyForCourt(m models.Match) bool { return !m.HasCourt() && m.BothCheckedIn() }

func ByStatus(status models.MatchStatusValue) Predicate {
	return func(m models.Match) bool { return m.Status == status }
}

func OnCourt(court int) Predicate {
	return func(m models.Match) bool { return m.CourtNumber != nil && *m.CourtNumber == court }
}

// All combines predicates; nil entries are skipped.
func All(preds ...Predicate) Predicate {
	return func(m models.Match) bool {
		for _, p := range preds {
			if p != nil && !p(m) {
				return false
			}
		}
		return true
	}
}
