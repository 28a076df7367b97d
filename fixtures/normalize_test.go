package fixtures_test

import (
	"testing"

	"github.com/Dosada05/tournament-console/fixtures"
	"github.com/Dosada05/tournament-console/models"
	. "github.com/smartystreets/goconvey/convey"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func idPtr(id models.ID) *models.ID {
	return &id
}

func rr(id, round, pool string) models.Match {
	return models.Match{MatchID: models.ID(id), RoundID: models.ID(round), Pool: pool}
}

func ko(id string, roundNumber, position int) models.Match {
	return models.Match{
		MatchID:     models.ID(id),
		BracketInfo: &models.BracketInfo{RoundNumber: roundNumber, BracketPosition: position},
	}
}

func TestParseMatchResult(t *testing.T) {
	Convey("Given raw match results", t, func() {
		Convey("A well-formed score parses both sides", func() {
			a, b := fixtures.ParseMatchResult(strPtr("3-5"))
			So(a, ShouldEqual, 3)
			So(b, ShouldEqual, 5)
		})

		Convey("A missing result is 0-0", func() {
			a, b := fixtures.ParseMatchResult(nil)
			So(a, ShouldEqual, 0)
			So(b, ShouldEqual, 0)
		})

		Convey("A non-numeric side degrades to 0 without failing", func() {
			a, b := fixtures.ParseMatchResult(strPtr("abc-5"))
			So(a, ShouldEqual, 0)
			So(b, ShouldEqual, 5)
		})

		Convey("Whitespace around sides is tolerated", func() {
			a, b := fixtures.ParseMatchResult(strPtr(" 11 - 9 "))
			So(a, ShouldEqual, 11)
			So(b, ShouldEqual, 9)
		})

		Convey("A result without a separator only fills team 1", func() {
			a, b := fixtures.ParseMatchResult(strPtr("7"))
			So(a, ShouldEqual, 7)
			So(b, ShouldEqual, 0)
		})
	})
}

func TestDerive(t *testing.T) {
	Convey("Given a completed match that is not final", t, func() {
		m := models.Match{
			MatchID:     "m1",
			MatchResult: strPtr("11-7"),
			MatchStatus: &models.MatchStatus{Status: models.MatchCompleted, IsFinal: false, WinnerTeamID: idPtr("7")},
		}

		Convey("The winner is withheld until the result is final", func() {
			d := fixtures.Derive(m)
			So(d.WinnerTeamID, ShouldBeNil)
			So(d.Status, ShouldEqual, models.MatchCompleted)
			So(d.Team1Score, ShouldEqual, 11)
			So(d.Team2Score, ShouldEqual, 7)
		})

		Convey("Once final, the winner is copied", func() {
			m.MatchStatus.IsFinal = true
			d := fixtures.Derive(m)
			So(d.WinnerTeamID, ShouldNotBeNil)
			So(*d.WinnerTeamID, ShouldEqual, models.ID("7"))
		})
	})

	Convey("Given a match without a status", t, func() {
		d := fixtures.Derive(models.Match{MatchID: "m2"})
		So(d.Status, ShouldEqual, models.MatchPending)
		So(d.WinnerTeamID, ShouldBeNil)
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given a mixed list of pool and knockout matches", t, func() {
		input := []models.Match{
			rr("1", "1", "A"),
			ko("k1", 1, 1),
			rr("2", "1", "B"),
			rr("3", "1", "A"),
			rr("4", "", ""),
			rr("5", "2", "unassigned"),
			ko("k2", 1, 2),
			rr("6", "2", ""),
		}
		input[0].RoundName = "Opening round"

		n := fixtures.Normalize(input)

		Convey("Every match lands in exactly one bucket", func() {
			So(n.Count(), ShouldEqual, len(input))
			seen := map[models.ID]int{}
			for _, m := range n.Matches() {
				seen[m.MatchID]++
			}
			So(len(seen), ShouldEqual, len(input))
			for _, count := range seen {
				So(count, ShouldEqual, 1)
			}
		})

		Convey("Knockouts keep their order of appearance", func() {
			So(len(n.Knockouts), ShouldEqual, 2)
			So(n.Knockouts[0].MatchID, ShouldEqual, models.ID("k1"))
			So(n.Knockouts[1].MatchID, ShouldEqual, models.ID("k2"))
		})

		Convey("Pool buckets keep input order", func() {
			pool := n.Rounds["1"].Pools["A"]
			So(len(pool), ShouldEqual, 2)
			So(pool[0].MatchID, ShouldEqual, models.ID("1"))
			So(pool[1].MatchID, ShouldEqual, models.ID("3"))
			So(n.Rounds["1"].PoolOrder, ShouldResemble, []string{"A", "B"})
		})

		Convey("Missing round and pool fall into unassigned buckets", func() {
			So(n.Rounds, ShouldContainKey, "unassigned")
			So(n.Rounds["unassigned"].Pools["unassigned"][0].MatchID, ShouldEqual, models.ID("4"))
			So(len(n.Rounds["2"].Pools["unassigned"]), ShouldEqual, 2)
		})

		Convey("Round names default to the round id", func() {
			So(n.Rounds["1"].Name, ShouldEqual, "Opening round")
			So(n.Rounds["2"].Name, ShouldEqual, "Round 2")
		})
	})

	Convey("Given no matches", t, func() {
		n := fixtures.Normalize(nil)
		So(n.Count(), ShouldEqual, 0)
		So(n.Knockouts, ShouldNotBeNil)
	})
}

func TestSelectDefaultRound(t *testing.T) {
	Convey("Given rounds labelled with integers", t, func() {
		n := fixtures.Normalize([]models.Match{rr("a", "2", "A"), rr("b", "10", "A"), rr("c", "9", "A")})

		Convey("The numerically greatest round is selected", func() {
			key, ok := fixtures.SelectDefaultRound(n.Rounds)
			So(ok, ShouldBeTrue)
			So(key, ShouldEqual, "10")
		})

		Convey("Round summaries are ordered numerically", func() {
			summaries := fixtures.RoundSummaries(n.Rounds)
			So(len(summaries), ShouldEqual, 3)
			So(summaries[0].ID, ShouldEqual, "2")
			So(summaries[1].ID, ShouldEqual, "9")
			So(summaries[2].ID, ShouldEqual, "10")
		})
	})

	Convey("Given an unassigned round next to numbered ones", t, func() {
		n := fixtures.Normalize([]models.Match{rr("a", "", ""), rr("b", "3", "A")})
		key, ok := fixtures.SelectDefaultRound(n.Rounds)
		So(ok, ShouldBeTrue)
		So(key, ShouldEqual, "3")
	})

	Convey("Given keys that parse as floats but not as integers", t, func() {
		n := fixtures.Normalize([]models.Match{
			rr("a", "NaN", "A"), rr("b", "2", "A"), rr("c", "10", "A"), rr("d", "1e2", "A"), rr("e", "Inf", "A"),
		})

		Convey("Only integer keys count as numeric and the choice is stable", func() {
			for i := 0; i < 20; i++ {
				key, ok := fixtures.SelectDefaultRound(n.Rounds)
				So(ok, ShouldBeTrue)
				So(key, ShouldEqual, "10")
			}
			So(fixtures.SortedRoundKeys(n.Rounds), ShouldResemble, []string{"1e2", "Inf", "NaN", "2", "10"})
		})
	})

	Convey("Given no rounds", t, func() {
		_, ok := fixtures.SelectDefaultRound(map[string]*fixtures.Round{})
		So(ok, ShouldBeFalse)
	})
}
