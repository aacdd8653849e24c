package matchplay

import "github.com/shopspring/decimal"

var two = decimal.NewFromInt(2)

// Points is the share of a match's points each team receives.
type Points struct {
	TeamA decimal.Decimal
	TeamB decimal.Decimal
}

// Total is the sum of both shares: zero for an unfinished match, pointsPerMatch otherwise.
func (p Points) Total() decimal.Decimal {
	return p.TeamA.Add(p.TeamB)
}

// For returns the share of the given side.
func (p Points) For(side Side) decimal.Decimal {
	if side == SideTeamB {
		return p.TeamB
	}
	return p.TeamA
}

// AllocatePoints splits a session's points for one match between the two teams.
// The winner of a decided match takes all of pointsPerMatch, a halved match gives each team
// exactly half, and an unfinished match gives nothing to either side.
func AllocatePoints(result MatchResult, pointsPerMatch decimal.Decimal) (Points, error) {
	if err := validatePointsPerMatch(pointsPerMatch); err != nil {
		return Points{}, err
	}

	switch result.Outcome {
	case OutcomeDecided:
		if result.Leader == SideTeamB {
			return Points{TeamA: decimal.Zero, TeamB: pointsPerMatch}, nil
		}
		return Points{TeamA: pointsPerMatch, TeamB: decimal.Zero}, nil
	case OutcomeHalved:
		half := pointsPerMatch.Div(two)
		return Points{TeamA: half, TeamB: half}, nil
	}
	return Points{TeamA: decimal.Zero, TeamB: decimal.Zero}, nil
}

func validatePointsPerMatch(pointsPerMatch decimal.Decimal) error {
	if !pointsPerMatch.IsPositive() {
		return &ValidationError{
			Field:  "points_per_match",
			Value:  pointsPerMatch.String(),
			Reason: "must be greater than zero",
		}
	}
	return nil
}

// MatchScore bundles everything the engine derives for one match.
type MatchScore struct {
	State  MatchState
	Result MatchResult
	Points Points
}

// ScoreMatch runs the full pipeline for one match: ledger to state, state to result,
// result to points.
func ScoreMatch(totalHoles int, holes []HoleResult, pointsPerMatch decimal.Decimal) (MatchScore, error) {
	state, err := ComputeMatchState(totalHoles, holes)
	if err != nil {
		return MatchScore{}, err
	}
	result := ClassifyResult(state)
	points, err := AllocatePoints(result, pointsPerMatch)
	if err != nil {
		return MatchScore{}, err
	}
	return MatchScore{State: state, Result: result, Points: points}, nil
}

