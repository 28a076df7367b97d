package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-console/models"
)

type BracketRound struct {
	RoundNumber int            `json:"round_number"`
	Name        string         `json:"name"`
	Matches     []models.Match `json:"matches"`
}

// Bracket is the knockout stage laid out column by column.
type Bracket struct {
	Rounds   []BracketRound `json:"rounds"`
	Champion *models.Team   `json:"champion,omitempty"`
}

// BuildBracket groups knockout matches by round_number and orders each round
// by bracket_position. Matches without bracket_info are ignored.
func BuildBracket(knockouts []models.Match) Bracket {
	byRound := make(map[int][]models.Match)
	for _, m := range knockouts {
		if m.BracketInfo == nil {
			continue
		}
		byRound[m.BracketInfo.RoundNumber] = append(byRound[m.BracketInfo.RoundNumber], m)
	}

	numbers := make([]int, 0, len(byRound))
	for n := range byRound {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	b := Bracket{Rounds: make([]BracketRound, 0, len(numbers))}
	for i, n := range numbers {
		matches := byRound[n]
		sort.SliceStable(matches, func(a, c int) bool {
			return matches[a].BracketInfo.BracketPosition < matches[c].BracketInfo.BracketPosition
		})
		b.Rounds = append(b.Rounds, BracketRound{
			RoundNumber: n,
			Name:        roundLabel(matches, len(numbers)-i),
			Matches:     matches,
		})
	}

	if len(b.Rounds) > 0 {
		final := b.Rounds[len(b.Rounds)-1]
		if len(final.Matches) == 1 {
			b.Champion = winner(final.Matches[0])
		}
	}
	return b
}

// roundLabel prefers the API's round name; otherwise it names the round by
// its distance from the final.
func roundLabel(matches []models.Match, fromEnd int) string {
	for _, m := range matches {
		if m.RoundName != "" {
			return m.RoundName
		}
	}
	switch fromEnd {
	case 1:
		return "Final"
	case 2:
		return "Semifinals"
	case 3:
		return "Quarterfinals"
	}
	return fmt.Sprintf("Round of %d", 1<<fromEnd)
}

func winner(m models.Match) *models.Team {
	if m.WinnerTeamID == nil {
		return nil
	}
	for _, t := range []*models.Team{m.Team1, m.Team2} {
		if t != nil && t.TeamID == *m.WinnerTeamID {
			return t
		}
	}
	return nil
}
