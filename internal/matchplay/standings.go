package matchplay

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchOutcome is one match's contribution to standings: its current result and the points the
// match is worth in its session.
type MatchOutcome struct {
	MatchID        uuid.UUID
	SessionID      uuid.UUID
	Result         MatchResult
	PointsPerMatch decimal.Decimal
}

// TeamTotals is the points tally of both teams over a group of matches.
type TeamTotals struct {
	TeamA decimal.Decimal
	TeamB decimal.Decimal
	// PointsAvailable is what the unfinished matches in the group are still worth.
	PointsAvailable   decimal.Decimal
	MatchesFinished   int
	MatchesInProgress int
}

func newTeamTotals() TeamTotals {
	return TeamTotals{TeamA: decimal.Zero, TeamB: decimal.Zero, PointsAvailable: decimal.Zero}
}

// Leader returns the side with more points, or "" when level.
func (t TeamTotals) Leader() Side {
	switch t.TeamA.Cmp(t.TeamB) {
	case 1:
		return SideTeamA
	case -1:
		return SideTeamB
	}
	return ""
}

func (t *TeamTotals) add(o MatchOutcome, p Points) {
	t.TeamA = t.TeamA.Add(p.TeamA)
	t.TeamB = t.TeamB.Add(p.TeamB)
	if o.Result.Outcome.Finished() {
		t.MatchesFinished++
	} else {
		t.MatchesInProgress++
		t.PointsAvailable = t.PointsAvailable.Add(o.PointsPerMatch)
	}
}

// SessionTotals is the tally of one session.
type SessionTotals struct {
	SessionID uuid.UUID
	TeamTotals
}

// Standings holds per-session subtotals and the trip grand total.
// Sessions appear in the order their first match appears in the input.
type Standings struct {
	Sessions []SessionTotals
	Trip     TeamTotals
}

// Session returns the subtotal for a session and whether the session had any matches.
func (s Standings) Session(id uuid.UUID) (SessionTotals, bool) {
	for _, st := range s.Sessions {
		if st.SessionID == id {
			return st, true
		}
	}
	return SessionTotals{}, false
}

// AggregateTeamTotals sums the allocated points of every match into one tally.
// It is a full reduction over the matches it is given; nothing carries over between calls.
func AggregateTeamTotals(matches []MatchOutcome) (TeamTotals, error) {
	totals := newTeamTotals()
	for _, m := range matches {
		p, err := AllocatePoints(m.Result, m.PointsPerMatch)
		if err != nil {
			return TeamTotals{}, err
		}
		totals.add(m, p)
	}
	return totals, nil
}

// AggregateStandings performs the same reduction as AggregateTeamTotals, grouped by session,
// and returns both the session subtotals and the trip total.
func AggregateStandings(matches []MatchOutcome) (Standings, error) {
	standings := Standings{Trip: newTeamTotals()}
	index := make(map[uuid.UUID]int)

	for _, m := range matches {
		p, err := AllocatePoints(m.Result, m.PointsPerMatch)
		if err != nil {
			return Standings{}, err
		}

		i, ok := index[m.SessionID]
		if !ok {
			i = len(standings.Sessions)
			index[m.SessionID] = i
			standings.Sessions = append(standings.Sessions, SessionTotals{
				SessionID:  m.SessionID,
				TeamTotals: newTeamTotals(),
			})
		}

		standings.Sessions[i].add(m, p)
		standings.Trip.add(m, p)
	}
	return standings, nil
}
