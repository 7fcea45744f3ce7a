// Package features turns raw chase state into model inputs.
package features

import (
	"strconv"
	"strings"

	"github.com/yourusername/chase-predictor/internal/models"
)

// Innings shape for the 20-over format
const (
	BallsPerOver = 6
	MaxOvers     = 20
	InningsBalls = MaxOvers * BallsPerOver
	MaxWickets   = 10
)

const oversField = "overs_done"

// Overs parsing errors
var (
	ErrOversRequired   = models.NewValidationError(oversField, "overs completed is required (e.g. 10.2)")
	ErrOversMalformed  = models.NewValidationError(oversField, "overs must be written as overs.balls (e.g. 10.2)")
	ErrOversOutOfRange = models.NewValidationError(oversField, "overs must be between 0 and 19")
	ErrBallsOutOfRange = models.NewValidationError(oversField, "balls must be between 0 and 5 (use format like 10.2)")
)

// ParseOvers converts overs.balls notation into a ball count.
// The fractional part counts deliveries, not tenths: "10.2" is 62 balls.
func ParseOvers(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrOversRequired
	}

	overPart, ballPart, hasDot := strings.Cut(s, ".")
	if hasDot && overPart == "" && ballPart == "" {
		return 0, ErrOversMalformed
	}

	overs, err := parseDigits(overPart)
	if err != nil {
		return 0, err
	}
	balls := 0
	if hasDot {
		if len(ballPart) > 1 {
			// "10.25" or "10.2.1"
			if isDigits(ballPart) {
				return 0, ErrBallsOutOfRange
			}
			return 0, ErrOversMalformed
		}
		if balls, err = parseDigits(ballPart); err != nil {
			return 0, err
		}
	}

	if overs > MaxOvers-1 {
		return 0, ErrOversOutOfRange
	}
	if balls > BallsPerOver-1 {
		return 0, ErrBallsOutOfRange
	}
	return overs*BallsPerOver + balls, nil
}

// parseDigits reads an unsigned decimal; an empty part counts as zero.
func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if !isDigits(s) {
		return 0, ErrOversMalformed
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// only reachable on overflow
		return 0, ErrOversOutOfRange
	}
	return n, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
