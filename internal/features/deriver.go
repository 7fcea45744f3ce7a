package features

import (
	"github.com/yourusername/chase-predictor/internal/models"
)

// Derived is the forward-looking feature set for a chase
type Derived struct {
	RunsLeft        float64
	BallsLeft       int
	WicketsLeft     int
	CurrentRunRate  float64
	RequiredRunRate float64
}

// Derive computes the chase features. It is the only implementation used by
// both the training frame and live inference.
//
// Rates are zero rather than undefined when their denominator is zero; the
// training frame drops such rows on its own terms.
func Derive(target, score float64, ballsBowled, wicketsFallen int) Derived {
	d := Derived{
		RunsLeft:    target - score,
		BallsLeft:   max(0, InningsBalls-ballsBowled),
		WicketsLeft: MaxWickets - wicketsFallen,
	}
	if ballsBowled > 0 {
		d.CurrentRunRate = score * BallsPerOver / float64(ballsBowled)
	}
	if d.BallsLeft > 0 {
		d.RequiredRunRate = d.RunsLeft * BallsPerOver / float64(d.BallsLeft)
	}
	return d
}

// Snapshot assembles the full chase state from raw inputs and derived values
func Snapshot(battingTeam, bowlingTeam, city string, target, score float64, ballsBowled, wicketsFallen int) models.ChaseSnapshot {
	d := Derive(target, score, ballsBowled, wicketsFallen)
	return models.ChaseSnapshot{
		BattingTeam:     battingTeam,
		BowlingTeam:     bowlingTeam,
		City:            city,
		Target:          target,
		Score:           score,
		BallsBowled:     ballsBowled,
		WicketsFallen:   wicketsFallen,
		RunsLeft:        d.RunsLeft,
		BallsLeft:       d.BallsLeft,
		WicketsLeft:     d.WicketsLeft,
		CurrentRunRate:  d.CurrentRunRate,
		RequiredRunRate: d.RequiredRunRate,
	}
}
