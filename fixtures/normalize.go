// Package fixtures turns the flat match list served by the tournament API
// into the round → pool → match shape every fixtures screen renders, and
// filters that shape. Everything here is pure and safe to call per request.
package fixtures

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Dosada05/tournament-console/models"
)

// Round is one tab of the fixtures screen.
type Round struct {
	ID        string                    `json:"id"`
	Name      string                    `json:"round_name"`
	Pools     map[string][]models.Match `json:"pools"`
	PoolOrder []string                  `json:"pool_order"`
}

// Normalized is the result of a normalization pass. Every input match lands
// in exactly one of Rounds or Knockouts.
type Normalized struct {
	Rounds    map[string]*Round `json:"rounds"`
	Knockouts []models.Match    `json:"knockouts"`
}

// ParseMatchResult reads a "<int>-<int>" score. It never fails: a missing
// result or an unparseable side is reported as 0.
func ParseMatchResult(result *string) (team1, team2 int) {
	if result == nil {
		return 0, 0
	}
	parts := strings.SplitN(*result, "-", 2)
	team1 = parseSide(parts[0])
	if len(parts) == 2 {
		team2 = parseSide(parts[1])
	}
	return team1, team2
}

func parseSide(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Derive fills the display fields of m from its raw API fields.
func Derive(m models.Match) models.Match {
	m.Team1Score, m.Team2Score = ParseMatchResult(m.MatchResult)
	m.Status = models.MatchPending
	m.WinnerTeamID = nil
	if m.MatchStatus != nil {
		if m.MatchStatus.Status != "" {
			m.Status = m.MatchStatus.Status
		}
		// A result can exist before the match is final; the winner only
		// counts once it is.
		if m.MatchStatus.IsFinal && m.MatchStatus.WinnerTeamID != nil {
			winner := *m.MatchStatus.WinnerTeamID
			m.WinnerTeamID = &winner
		}
	}
	return m
}

// RoundKey returns the bucket key of a non-knockout match's round.
func RoundKey(m models.Match) string {
	if m.RoundID.IsZero() {
		return models.UnassignedKey
	}
	return m.RoundID.String()
}

// PoolKey returns the bucket key of a non-knockout match's pool.
func PoolKey(m models.Match) string {
	if strings.TrimSpace(m.Pool) == "" {
		return models.UnassignedKey
	}
	return m.Pool
}

// Normalize groups matches into rounds and pools, keeping the relative
// order of matches that share a bucket.
func Normalize(matches []models.Match) Normalized {
	out := Normalized{
		Rounds:    make(map[string]*Round),
		Knockouts: make([]models.Match, 0),
	}
	for _, raw := range matches {
		m := Derive(raw)
		if m.IsKnockout() {
			out.Knockouts = append(out.Knockouts, m)
			continue
		}

		roundKey := RoundKey(m)
		round, ok := out.Rounds[roundKey]
		if !ok {
			round = &Round{
				ID:    roundKey,
				Name:  roundName(m, roundKey),
				Pools: make(map[string][]models.Match),
			}
			out.Rounds[roundKey] = round
		}

		poolKey := PoolKey(m)
		if _, seen := round.Pools[poolKey]; !seen {
			round.PoolOrder = append(round.PoolOrder, poolKey)
		}
		round.Pools[poolKey] = append(round.Pools[poolKey], m)
	}
	return out
}

func roundName(m models.Match, key string) string {
	if m.RoundName != "" {
		return m.RoundName
	}
	return fmt.Sprintf("Round %s", key)
}

// Count returns the number of matches held by n.
func (n Normalized) Count() int {
	total := len(n.Knockouts)
	for _, r := range n.Rounds {
		for _, pool := range r.Pools {
			total += len(pool)
		}
	}
	return total
}

// Matches flattens n back into a list: rounds in display order, pools in
// first-seen order, knockouts last.
func (n Normalized) Matches() []models.Match {
	out := make([]models.Match, 0, n.Count())
	for _, key := range SortedRoundKeys(n.Rounds) {
		out = append(out, n.Rounds[key].All()...)
	}
	return append(out, n.Knockouts...)
}

// Each calls fn with a pointer to every match held by n. Mutations are
// visible to anyone sharing n's slices, so callers Clone first.
func (n Normalized) Each(fn func(*models.Match)) {
	for _, r := range n.Rounds {
		for _, pool := range r.Pools {
			for i := range pool {
				fn(&pool[i])
			}
		}
	}
	for i := range n.Knockouts {
		fn(&n.Knockouts[i])
	}
}

// All returns every match of the round in pool-then-insertion order.
func (r *Round) All() []models.Match {
	var out []models.Match
	for _, pool := range r.PoolOrder {
		out = append(out, r.Pools[pool]...)
	}
	return out
}

// Clone deep-copies n so a caller can mutate the copy without touching the
// original's slices.
func (n Normalized) Clone() Normalized {
	out := Normalized{
		Rounds:    make(map[string]*Round, len(n.Rounds)),
		Knockouts: append([]models.Match(nil), n.Knockouts...),
	}
	for key, r := range n.Rounds {
		cp := &Round{
			ID:        r.ID,
			Name:      r.Name,
			Pools:     make(map[string][]models.Match, len(r.Pools)),
			PoolOrder: append([]string(nil), r.PoolOrder...),
		}
		for pool, ms := range r.Pools {
			cp.Pools[pool] = append([]models.Match(nil), ms...)
		}
		out.Rounds[key] = cp
	}
	return out
}

// SelectDefaultRound picks the round the screen opens on: the numerically
// greatest key, so "10" wins over "9". Keys that are not integers rank below
// every numeric key.
func SelectDefaultRound(rounds map[string]*Round) (string, bool) {
	keys := SortedRoundKeys(rounds)
	if len(keys) == 0 {
		return "", false
	}
	return keys[len(keys)-1], true
}

// SortedRoundKeys orders round keys numerically ascending, non-numeric keys
// first in lexical order.
func SortedRoundKeys(rounds map[string]*Round) []string {
	keys := make([]string, 0, len(rounds))
	for k := range rounds {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessRoundKey(keys[i], keys[j]) })
	return keys
}

func lessRoundKey(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return false
	case errB == nil:
		return true
	default:
		return a < b
	}
}

// RoundSummary describes a round tab.
type RoundSummary struct {
	ID         string   `json:"id"`
	Name       string   `json:"round_name"`
	Pools      []string `json:"pools"`
	MatchCount int      `json:"match_count"`
}

func RoundSummaries(rounds map[string]*Round) []RoundSummary {
	keys := SortedRoundKeys(rounds)
	out := make([]RoundSummary, 0, len(keys))
	for _, k := range keys {
		r := rounds[k]
		count := 0
		for _, ms := range r.Pools {
			count += len(ms)
		}
		out = append(out, RoundSummary{
			ID:         r.ID,
			Name:       r.Name,
			Pools:      append([]string(nil), r.PoolOrder...),
			MatchCount: count,
		})
	}
	return out
}
