package matchplay

import "fmt"

// ClassifyResult turns a running state into a terminal result, or reports it not finished.
//
// HolesRemainingAtDecision is copied from the state as given. The classifier does not rewind to
// the hole on which a match was closed out, so a ledger that keeps a few holes recorded after the
// closeout classifies as a decision with fewer holes remaining. A state with no holes to play,
// such as the zero value, is not finished.
func ClassifyResult(state MatchState) MatchResult {
	if state.TotalHoles < 1 {
		return MatchResult{Outcome: OutcomeNotFinished}
	}
	allPlayed := state.HolesPlayed >= state.TotalHoles

	switch {
	case state.IsClosedOut || (allPlayed && state.CurrentScore != 0):
		return MatchResult{
			Outcome:                  OutcomeDecided,
			Leader:                   state.Leader(),
			Margin:                   state.Lead(),
			HolesRemainingAtDecision: state.HolesRemaining,
		}
	case allPlayed:
		return MatchResult{Outcome: OutcomeHalved}
	default:
		return MatchResult{Outcome: OutcomeNotFinished}
	}
}

// Notation renders a finished result the way golfers write it:
// "3&2" when the match ended early, "1 UP" when it went the distance, "Halved" for a tie.
// An unfinished result renders as the empty string.
func (r MatchResult) Notation() string {
	switch r.Outcome {
	case OutcomeDecided:
		if r.HolesRemainingAtDecision == 0 {
			return fmt.Sprintf("%d UP", r.Margin)
		}
		return fmt.Sprintf("%d&%d", r.Margin, r.HolesRemainingAtDecision)
	case OutcomeHalved:
		return "Halved"
	}
	return ""
}

// String implements fmt.Stringer.
func (r MatchResult) String() string {
	if r.Outcome == OutcomeNotFinished {
		return string(OutcomeNotFinished)
	}
	if r.Outcome == OutcomeDecided {
		return fmt.Sprintf("%s %s", r.Leader, r.Notation())
	}
	return r.Notation()
}

// RunningNotation renders the live status of a match for a scoreboard, e.g. "All Square thru 4",
// "2 UP thru 7" or "3 UP thru 15, dormie". The leading side is left to the caller, which knows
// the team names. Finished states render with their result notation.
func RunningNotation(state MatchState) string {
	if result := ClassifyResult(state); result.Outcome.Finished() {
		return result.Notation()
	}

	if state.HolesPlayed == 0 {
		return "All Square"
	}
	if state.CurrentScore == 0 {
		return fmt.Sprintf("All Square thru %d", state.HolesPlayed)
	}

	s := fmt.Sprintf("%d UP thru %d", state.Lead(), state.HolesPlayed)
	if state.IsDormie {
		s += ", dormie"
	}
	return s
}
