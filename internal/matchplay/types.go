// Package matchplay is the match-play scoring engine for Cup Trip.
// It turns the hole-by-hole ledger of a match into a running MatchState, classifies that state
// into a MatchResult ("3&2", "1 UP", "Halved"), allocates the session's points between the two
// teams, and sums those points into session and trip standings.
//
// Every function in this package is a pure computation over its arguments. Nothing here keeps a
// running total between calls: the ledger handed in is the single source of truth, so a hole
// correction or an undo is reflected simply by calling the functions again.
package matchplay

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTotalHoles is the conventional length of a match.
const DefaultTotalHoles = 18

// Winner is the recorded outcome of a single hole.
type Winner string

const (
	WinnerTeamA  Winner = "team_a" // Team A won the hole
	WinnerTeamB  Winner = "team_b" // Team B won the hole
	WinnerHalved Winner = "halved" // Both sides made the same score
)

// Valid reports whether w is one of the three known hole outcomes.
func (w Winner) Valid() bool {
	switch w {
	case WinnerTeamA, WinnerTeamB, WinnerHalved:
		return true
	}
	return false
}

// delta is the hole's contribution to the signed match score (positive = team A ahead).
func (w Winner) delta() int {
	switch w {
	case WinnerTeamA:
		return 1
	case WinnerTeamB:
		return -1
	}
	return 0
}

// Side identifies one of the two teams in a match.
type Side string

const (
	SideTeamA Side = "team_a"
	SideTeamB Side = "team_b"
)

// HoleResult is one recorded outcome for one hole of one match.
// Several HoleResults may exist for the same hole when a hole is re-scored; the one with the
// latest RecordedAt is the effective one.
type HoleResult struct {
	MatchID    uuid.UUID
	HoleNumber int       // 1..TotalHoles
	Winner     Winner
	RecordedAt time.Time // Only used to pick the effective result when a hole is re-scored
}

// MatchState is the running state of a match derived from its effective ledger.
type MatchState struct {
	TotalHoles     int
	HolesPlayed    int
	HolesRemaining int
	// CurrentScore is the signed lead: positive when team A is ahead, negative when team B is.
	CurrentScore int
	// IsDormie is set when the lead equals the holes left: the trailing side can at best halve.
	IsDormie bool
	// IsClosedOut is set when the lead exceeds the holes left: the match is decided.
	IsClosedOut bool
}

// Lead returns the absolute size of the current lead.
func (s MatchState) Lead() int {
	return abs(s.CurrentScore)
}

// Leader returns the side that is ahead, or "" when the match is all square.
func (s MatchState) Leader() Side {
	switch {
	case s.CurrentScore > 0:
		return SideTeamA
	case s.CurrentScore < 0:
		return SideTeamB
	}
	return ""
}

// Outcome classifies a match as still running, won by one side, or tied.
type Outcome string

const (
	OutcomeNotFinished Outcome = "not_finished"
	OutcomeDecided     Outcome = "decided"
	OutcomeHalved      Outcome = "halved"
)

// Finished reports whether the outcome is terminal (decided or halved).
func (o Outcome) Finished() bool {
	return o == OutcomeDecided || o == OutcomeHalved
}

// MatchResult is the terminal descriptor of a match.
// Leader, Margin and HolesRemainingAtDecision are only meaningful when Outcome is decided;
// callers must check Outcome before reading them.
type MatchResult struct {
	Outcome                  Outcome
	Leader                   Side
	Margin                   int
	HolesRemainingAtDecision int
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
