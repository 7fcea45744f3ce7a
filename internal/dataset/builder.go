// Package dataset builds the labelled per-ball training frame for the
// second innings of each match.
package dataset

import (
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/chase-predictor/internal/features"
	"github.com/yourusername/chase-predictor/internal/models"
)

// Reasons a chase row is excluded from the frame
const (
	DropUndefinedRate    = "undefined_rate"
	DropInningsComplete  = "innings_complete"
	DropTargetPassed     = "target_passed"
	DropWicketsRange     = "wickets_out_of_range"
	DropMissingCategory  = "missing_category"
	DropNonFinite        = "non_finite"
	DropUnmatchedInnings = "unmatched_innings"
)

// Stats summarises a build
type Stats struct {
	Matches         int
	Deliveries      int
	Duplicates      int
	ChaseDeliveries int
	Rows            int
	Positive        int
	Dropped         map[string]int
}

// Fields renders the summary for structured logging
func (s Stats) Fields() logrus.Fields {
	f := logrus.Fields{
		"matches":          s.Matches,
		"deliveries":       s.Deliveries,
		"duplicates":       s.Duplicates,
		"chase_deliveries": s.ChaseDeliveries,
		"rows":             s.Rows,
		"positive":         s.Positive,
	}
	for reason, n := range s.Dropped {
		f["dropped_"+reason] = n
	}
	return f
}

type indexedDelivery struct {
	models.DeliveryRecord
	pos int
}

// Build joins matches with deliveries and emits one labelled row per
// second-innings delivery. The target of a match is its first-innings total
// plus one; score and wickets accumulate per match in delivery order.
//
// Rows come out ordered by match id, then by (over, ball, input position).
// Build does not modify its inputs and returns the same frame for the same
// inputs.
func Build(matches []models.MatchRecord, deliveries []models.DeliveryRecord) ([]models.LabeledRow, Stats, error) {
	stats := Stats{
		Deliveries: len(deliveries),
		Dropped:    make(map[string]int),
	}

	matchByID := make(map[string]models.MatchRecord, len(matches))
	for _, m := range matches {
		if _, ok := matchByID[m.ID]; !ok {
			matchByID[m.ID] = m
		}
	}

	seen := make(map[models.DeliveryKey]struct{}, len(deliveries))
	firstInnings := make(map[string]int)
	chases := make(map[string][]indexedDelivery)
	for i, d := range deliveries {
		key := d.Key()
		if _, dup := seen[key]; dup {
			stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		switch d.Inning {
		case 1:
			firstInnings[d.MatchID] += d.TotalRuns
		case 2:
			chases[d.MatchID] = append(chases[d.MatchID], indexedDelivery{DeliveryRecord: d, pos: i})
		}
	}

	ids := make([]string, 0, len(chases))
	for id, balls := range chases {
		_, hasMatch := matchByID[id]
		_, hasTarget := firstInnings[id]
		if !hasMatch || !hasTarget {
			stats.Dropped[DropUnmatchedInnings] += len(balls)
			continue
		}
		ids = append(ids, id)
	}
	sortMatchIDs(ids)
	stats.Matches = len(ids)

	var rows []models.LabeledRow
	for _, id := range ids {
		m := matchByID[id]
		target := float64(firstInnings[id] + 1)

		balls := chases[id]
		sort.SliceStable(balls, func(i, j int) bool {
			if balls[i].Over != balls[j].Over {
				return balls[i].Over < balls[j].Over
			}
			if balls[i].Ball != balls[j].Ball {
				return balls[i].Ball < balls[j].Ball
			}
			return balls[i].pos < balls[j].pos
		})
		stats.ChaseDeliveries += len(balls)

		score, wickets := 0, 0
		for _, d := range balls {
			score += d.TotalRuns
			if d.Dismissal {
				wickets++
			}

			ballsBowled := d.BallsBowled()
			snap := features.Snapshot(d.BattingTeam, d.BowlingTeam, m.City, target, float64(score), ballsBowled, wickets)
			if reason := dropReason(ballsBowled, &snap); reason != "" {
				stats.Dropped[reason]++
				continue
			}

			label := 0
			if m.HasWinner() && d.BattingTeam == m.Winner {
				label = 1
				stats.Positive++
			}
			rows = append(rows, models.LabeledRow{MatchID: id, Row: snap.Row(), Label: label})
		}
	}

	stats.Rows = len(rows)
	if len(rows) == 0 {
		return nil, stats, ErrNoTrainingData
	}
	return rows, stats, nil
}

func dropReason(ballsBowled int, snap *models.ChaseSnapshot) string {
	row := snap.Row()
	switch {
	case ballsBowled <= 0:
		return DropUndefinedRate
	case !row.Finite():
		return DropNonFinite
	case snap.BallsLeft == 0:
		return DropInningsComplete
	case snap.RunsLeft < 0:
		return DropTargetPassed
	case snap.WicketsLeft < 0 || snap.WicketsLeft > features.MaxWickets:
		return DropWicketsRange
	case !row.Complete():
		return DropMissingCategory
	}
	return ""
}

// sortMatchIDs orders ids numerically when every id is an integer and
// lexically otherwise.
func sortMatchIDs(ids []string) {
	nums := make(map[string]int64, len(ids))
	for _, id := range ids {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			sort.Strings(ids)
			return
		}
		nums[id] = n
	}
	sort.Slice(ids, func(i, j int) bool {
		if nums[ids[i]] != nums[ids[j]] {
			return nums[ids[i]] < nums[ids[j]]
		}
		return ids[i] < ids[j]
	})
}
