package matchplay

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fridayAM = uuid.MustParse("0b6f7a52-1d43-4e7b-8a9c-3f2e1d0c9b8a")
	fridayPM = uuid.MustParse("9c8b7a6f-5e4d-4c3b-8a29-1f0e9d8c7b6a")
)

func decided(leader Side) MatchResult {
	return MatchResult{Outcome: OutcomeDecided, Leader: leader, Margin: 2, HolesRemainingAtDecision: 1}
}

func TestAggregateTeamTotals(t *testing.T) {
	matches := []MatchOutcome{
		{SessionID: fridayAM, Result: decided(SideTeamA), PointsPerMatch: pts("1")},
		{SessionID: fridayAM, Result: MatchResult{Outcome: OutcomeHalved}, PointsPerMatch: pts("1")},
		{SessionID: fridayPM, Result: decided(SideTeamB), PointsPerMatch: pts("0.5")},
		{SessionID: fridayPM, Result: MatchResult{Outcome: OutcomeNotFinished}, PointsPerMatch: pts("0.5")},
	}

	totals, err := AggregateTeamTotals(matches)
	require.NoError(t, err)
	assertDecimal(t, "1.5", totals.TeamA)
	assertDecimal(t, "1", totals.TeamB)
	assertDecimal(t, "0.5", totals.PointsAvailable)
	assert.Equal(t, 3, totals.MatchesFinished)
	assert.Equal(t, 1, totals.MatchesInProgress)
	assert.Equal(t, SideTeamA, totals.Leader())
}

func TestAggregateTeamTotals_Empty(t *testing.T) {
	totals, err := AggregateTeamTotals(nil)
	require.NoError(t, err)
	assert.True(t, totals.TeamA.IsZero())
	assert.True(t, totals.TeamB.IsZero())
	assert.Empty(t, totals.Leader())
}

func TestAggregateTeamTotals_RejectsBadSession(t *testing.T) {
	_, err := AggregateTeamTotals([]MatchOutcome{
		{SessionID: fridayAM, Result: decided(SideTeamA), PointsPerMatch: pts("0")},
	})
	assert.True(t, IsValidation(err))
}

func TestAggregateTeamTotals_HalfPointsStayExact(t *testing.T) {
	// Sixty halved matches worth 0.1 each: 0.05 to each side sixty times.
	matches := make([]MatchOutcome, 60)
	for i := range matches {
		matches[i] = MatchOutcome{SessionID: fridayPM, Result: MatchResult{Outcome: OutcomeHalved}, PointsPerMatch: pts("0.1")}
	}

	totals, err := AggregateTeamTotals(matches)
	require.NoError(t, err)
	assertDecimal(t, "3", totals.TeamA)
	assertDecimal(t, "3", totals.TeamB)
	assertDecimal(t, "6", totals.TeamA.Add(totals.TeamB))
}

func TestAggregateStandings(t *testing.T) {
	matches := []MatchOutcome{
		{SessionID: fridayAM, Result: decided(SideTeamA), PointsPerMatch: pts("1")},
		{SessionID: fridayPM, Result: decided(SideTeamB), PointsPerMatch: pts("0.5")},
		{SessionID: fridayAM, Result: MatchResult{Outcome: OutcomeHalved}, PointsPerMatch: pts("1")},
		{SessionID: fridayPM, Result: MatchResult{Outcome: OutcomeHalved}, PointsPerMatch: pts("0.5")},
	}

	standings, err := AggregateStandings(matches)
	require.NoError(t, err)
	require.Len(t, standings.Sessions, 2)
	assert.Equal(t, fridayAM, standings.Sessions[0].SessionID)
	assert.Equal(t, fridayPM, standings.Sessions[1].SessionID)

	am, ok := standings.Session(fridayAM)
	require.True(t, ok)
	assertDecimal(t, "1.5", am.TeamA)
	assertDecimal(t, "0.5", am.TeamB)

	pm, ok := standings.Session(fridayPM)
	require.True(t, ok)
	assertDecimal(t, "0.25", pm.TeamA)
	assertDecimal(t, "0.75", pm.TeamB)

	_, ok = standings.Session(uuid.New())
	assert.False(t, ok)

	// The trip total is the same reduction as the flat aggregate.
	flat, err := AggregateTeamTotals(matches)
	require.NoError(t, err)
	assertDecimal(t, flat.TeamA.String(), standings.Trip.TeamA)
	assertDecimal(t, flat.TeamB.String(), standings.Trip.TeamB)
	assertDecimal(t, am.TeamA.Add(pm.TeamA).String(), standings.Trip.TeamA)
	assert.Equal(t, 4, standings.Trip.MatchesFinished)
}

func TestAggregateStandings_RecomputesAfterCorrection(t *testing.T) {
	// Hole 18 first goes to team A (1 UP), then is corrected to halved.
	holes := ledger(concat(repeat(H, 17), []Winner{A})...)
	before, err := ScoreMatch(18, holes, pts("1"))
	require.NoError(t, err)

	outcomes := func(r MatchResult) []MatchOutcome {
		return []MatchOutcome{
			{SessionID: fridayAM, Result: decided(SideTeamB), PointsPerMatch: pts("1")},
			{SessionID: fridayAM, Result: r, PointsPerMatch: pts("1")},
		}
	}

	totals, err := AggregateTeamTotals(outcomes(before.Result))
	require.NoError(t, err)
	assertDecimal(t, "1", totals.TeamA)
	assertDecimal(t, "1", totals.TeamB)

	corrected := append(holes, HoleResult{MatchID: testMatchID, HoleNumber: 18, Winner: H, RecordedAt: baseTime.Add(2 * time.Hour)})
	after, err := ScoreMatch(18, corrected, pts("1"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeHalved, after.Result.Outcome)

	totals, err = AggregateTeamTotals(outcomes(after.Result))
	require.NoError(t, err)
	assertDecimal(t, "0.5", totals.TeamA)
	assertDecimal(t, "1.5", totals.TeamB)
}
