package matchplay

import (
	"cmp"
	"slices"
	"strconv"
	"time"
)

// EffectiveResults validates a match ledger and reduces it to one HoleResult per hole number:
// the one with the latest RecordedAt. The returned slice is a new slice sorted by hole number;
// the input is never modified.
//
// Every entry is validated, including superseded ones. Two entries for the same hole with the
// same RecordedAt but different winners cannot be ordered and are rejected.
func EffectiveResults(totalHoles int, holes []HoleResult) ([]HoleResult, error) {
	if totalHoles < 1 {
		return nil, &ValidationError{
			Field:  "total_holes",
			Value:  strconv.Itoa(totalHoles),
			Reason: "a match must have at least one hole",
		}
	}

	// Work on a sorted copy so validation errors and tie handling do not depend on the
	// order the ledger was handed in.
	sorted := slices.Clone(holes)
	slices.SortStableFunc(sorted, func(a, b HoleResult) int {
		if c := cmp.Compare(a.HoleNumber, b.HoleNumber); c != 0 {
			return c
		}
		return a.RecordedAt.Compare(b.RecordedAt)
	})

	effective := make([]HoleResult, 0, len(sorted))
	for _, h := range sorted {
		if err := validateHole(totalHoles, h); err != nil {
			return nil, err
		}

		n := len(effective)
		if n == 0 || effective[n-1].HoleNumber != h.HoleNumber {
			effective = append(effective, h)
			continue
		}

		// Same hole as the previous entry; sorted order means h is at least as recent.
		prev := effective[n-1]
		if h.RecordedAt.Equal(prev.RecordedAt) && h.Winner != prev.Winner {
			return nil, &ValidationError{
				Field:      "recorded_at",
				HoleNumber: h.HoleNumber,
				Value:      h.RecordedAt.Format(time.RFC3339Nano),
				Reason:     "conflicting results recorded at the same instant",
			}
		}
		effective[n-1] = h
	}
	return effective, nil
}

func validateHole(totalHoles int, h HoleResult) error {
	if h.HoleNumber < 1 || h.HoleNumber > totalHoles {
		return &ValidationError{
			Field:      "hole_number",
			HoleNumber: h.HoleNumber,
			Value:      strconv.Itoa(h.HoleNumber),
			Reason:     "must be between 1 and " + strconv.Itoa(totalHoles),
		}
	}
	if !h.Winner.Valid() {
		return &ValidationError{
			Field:      "winner",
			HoleNumber: h.HoleNumber,
			Value:      string(h.Winner),
			Reason:     "must be team_a, team_b or halved",
		}
	}
	return nil
}

// ComputeMatchState derives the running state of a match from its full ledger.
// The result depends only on the effective result of each hole, never on the order the
// results were recorded in, so it can be recomputed at any time after a correction or undo.
func ComputeMatchState(totalHoles int, holes []HoleResult) (MatchState, error) {
	effective, err := EffectiveResults(totalHoles, holes)
	if err != nil {
		return MatchState{}, err
	}

	score := 0
	for _, h := range effective {
		score += h.Winner.delta()
	}

	played := len(effective)
	remaining := totalHoles - played
	lead := abs(score)

	return MatchState{
		TotalHoles:     totalHoles,
		HolesPlayed:    played,
		HolesRemaining: remaining,
		CurrentScore:   score,
		IsDormie:       remaining > 0 && lead == remaining,
		IsClosedOut:    lead > remaining,
	}, nil
}
