package matchplay

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel every ValidationError matches through errors.Is.
var ErrValidation = errors.New("matchplay: invalid input")

// ValidationError reports malformed input at the engine boundary: a hole number outside the
// match, an unknown winner token, a non-positive points value, or an ambiguous re-score.
// The engine never drops or clamps bad input; it returns one of these instead.
type ValidationError struct {
	Field      string // The offending input field, e.g. "hole_number" or "points_per_match"
	HoleNumber int    // The hole the bad input belongs to; 0 when the error is not hole-specific
	Value      string // The rejected value, rendered for display
	Reason     string
}

func (e *ValidationError) Error() string {
	if e.HoleNumber > 0 {
		return fmt.Sprintf("invalid %s %q on hole %d: %s", e.Field, e.Value, e.HoleNumber, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
