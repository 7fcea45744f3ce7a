package models

import "math"

// ChaseSnapshot is the state of a second-innings chase at one point in time
type ChaseSnapshot struct {
	BattingTeam     string  `json:"batting_team"`
	BowlingTeam     string  `json:"bowling_team"`
	City            string  `json:"city"`
	Target          float64 `json:"target"`
	Score           float64 `json:"score"`
	BallsBowled     int     `json:"balls_bowled"`
	WicketsFallen   int     `json:"wickets_fallen"`
	RunsLeft        float64 `json:"runs_left"`
	BallsLeft       int     `json:"balls_left"`
	WicketsLeft     int     `json:"wickets_left"`
	CurrentRunRate  float64 `json:"current_run_rate"`
	RequiredRunRate float64 `json:"required_run_rate"`
}

// Row projects the snapshot onto the columns consumed by the model
func (s *ChaseSnapshot) Row() FeatureRow {
	return FeatureRow{
		BattingTeam:     s.BattingTeam,
		BowlingTeam:     s.BowlingTeam,
		City:            s.City,
		RunsLeft:        s.RunsLeft,
		BallsLeft:       float64(s.BallsLeft),
		WicketsLeft:     float64(s.WicketsLeft),
		Target:          s.Target,
		CurrentRunRate:  s.CurrentRunRate,
		RequiredRunRate: s.RequiredRunRate,
	}
}

// Categorical and numeric column names, in model order
var (
	CategoricalColumns = []string{"batting_team", "bowling_team", "city"}
	NumericColumns     = []string{"runs_left", "balls_left", "wickets_left", "target", "current_run_rate", "required_run_rate"}
)

// FeatureRow is a single model input
type FeatureRow struct {
	BattingTeam     string  `json:"batting_team"`
	BowlingTeam     string  `json:"bowling_team"`
	City            string  `json:"city"`
	RunsLeft        float64 `json:"runs_left"`
	BallsLeft       float64 `json:"balls_left"`
	WicketsLeft     float64 `json:"wickets_left"`
	Target          float64 `json:"target"`
	CurrentRunRate  float64 `json:"current_run_rate"`
	RequiredRunRate float64 `json:"required_run_rate"`
}

// Categorical returns the categorical values in CategoricalColumns order
func (r FeatureRow) Categorical() []string {
	return []string{r.BattingTeam, r.BowlingTeam, r.City}
}

// Numeric returns the numeric values in NumericColumns order
func (r FeatureRow) Numeric() []float64 {
	return []float64{r.RunsLeft, r.BallsLeft, r.WicketsLeft, r.Target, r.CurrentRunRate, r.RequiredRunRate}
}

// LabeledRow is a training example; Label is 1 when the batting side won
type LabeledRow struct {
	MatchID string     `json:"match_id"`
	Row     FeatureRow `json:"row"`
	Label   int        `json:"label"`
}

// Finite reports whether every numeric value is a real number
func (r FeatureRow) Finite() bool {
	for _, v := range r.Numeric() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Complete reports whether every categorical value is present
func (r FeatureRow) Complete() bool {
	for _, v := range r.Categorical() {
		if v == "" {
			return false
		}
	}
	return true
}
