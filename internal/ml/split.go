package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/yourusername/chase-predictor/internal/models"
)

// Hold-out defaults
const (
	DefaultTestFraction = 0.2
	DefaultSeed         = 42
)

// StratifiedSplit partitions rows into train and test sets, keeping each
// label's share of the test set close to its share of the input. The same
// rows, fraction and seed always give the same split; both halves keep the
// input order.
func StratifiedSplit(rows []models.LabeledRow, testFraction float64, seed int64) (train, test []models.LabeledRow, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("%w: test fraction %v must be in (0, 1)", ErrInvalidSplit, testFraction)
	}

	byLabel := make(map[int][]int)
	for i, r := range rows {
		byLabel[r.Label] = append(byLabel[r.Label], i)
	}
	labels := make([]int, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	rng := rand.New(rand.NewSource(seed))
	inTest := make([]bool, len(rows))
	for _, l := range labels {
		idx := byLabel[l]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		n := int(math.Round(testFraction * float64(len(idx))))
		if n >= len(idx) {
			n = len(idx) - 1
		}
		for _, i := range idx[:n] {
			inTest[i] = true
		}
	}

	for i, r := range rows {
		if inTest[i] {
			test = append(test, r)
		} else {
			train = append(train, r)
		}
	}
	if len(train) == 0 || len(test) == 0 {
		return nil, nil, fmt.Errorf("%w: %d rows cannot fill both halves", ErrInvalidSplit, len(rows))
	}
	return train, test, nil
}
