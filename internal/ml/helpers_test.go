package ml

import (
	"math"
	"math/rand"

	"github.com/yourusername/chase-predictor/internal/features"
	"github.com/yourusername/chase-predictor/internal/models"
)

var (
	testTeams  = []string{"Chennai Super Kings", "Delhi Capitals", "Mumbai Indians"}
	testCities = []string{"Chennai", "Mumbai"}
)

// syntheticRows builds chases whose outcome depends on the required rate,
// leaving a gap around the boundary so the classes separate cleanly.
func syntheticRows(n int, seed int64) []models.LabeledRow {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]models.LabeledRow, 0, n)
	for len(rows) < n {
		ballsBowled := 1 + rng.Intn(90)
		target := 140.0 + float64(rng.Intn(60))
		score := float64(rng.Intn(int(target)))
		wickets := rng.Intn(10)

		batting := testTeams[rng.Intn(len(testTeams))]
		bowling := testTeams[(indexOf(testTeams, batting)+1+rng.Intn(len(testTeams)-1))%len(testTeams)]
		city := testCities[rng.Intn(len(testCities))]

		snap := features.Snapshot(batting, bowling, city, target, score, ballsBowled, wickets)
		if snap.RequiredRunRate > 7 && snap.RequiredRunRate < 11 {
			continue
		}
		label := 0
		if snap.RequiredRunRate <= 7 {
			label = 1
		}
		rows = append(rows, models.LabeledRow{MatchID: "m", Row: snap.Row(), Label: label})
	}
	return rows
}

// wholeInningsRows builds chases from anywhere in the innings, including
// the last over where required rates run into the hundreds. Labels are
// drawn from a noisy curve so the classes overlap.
func wholeInningsRows(n int, seed int64) []models.LabeledRow {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]models.LabeledRow, 0, n)
	for len(rows) < n {
		ballsBowled := 1 + rng.Intn(119)
		if len(rows)%8 == 0 {
			ballsBowled = 114 + rng.Intn(6)
		}
		target := 120.0 + float64(rng.Intn(100))
		score := math.Floor(target * rng.Float64())
		wickets := rng.Intn(10)

		batting := testTeams[rng.Intn(len(testTeams))]
		bowling := testTeams[(indexOf(testTeams, batting)+1+rng.Intn(len(testTeams)-1))%len(testTeams)]
		city := testCities[rng.Intn(len(testCities))]

		snap := features.Snapshot(batting, bowling, city, target, score, ballsBowled, wickets)
		z := 2.5 - 0.3*snap.RequiredRunRate - 0.25*float64(wickets)
		label := 0
		if rng.Float64() < 1/(1+math.Exp(-z)) {
			label = 1
		}
		rows = append(rows, models.LabeledRow{MatchID: "m", Row: snap.Row(), Label: label})
	}
	return rows
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

func fittedPipeline(n int) (*Pipeline, []models.LabeledRow, error) {
	rows := syntheticRows(n, 7)
	p := NewPipeline(Options{})
	return p, rows, p.Fit(rows)
}
