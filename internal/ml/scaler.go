package ml

import (
	"fmt"
	"math"
)

// StandardScaler centres numeric columns on the training mean and divides by
// the training standard deviation. Constant columns keep a scale of 1.
type StandardScaler struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// FitStandardScaler learns per-column mean and population standard deviation
func FitStandardScaler(columns []string, rows [][]float64) (*StandardScaler, error) {
	n := len(columns)
	s := &StandardScaler{
		Columns: append([]string(nil), columns...),
		Mean:    make([]float64, n),
		Scale:   make([]float64, n),
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTrainingSet
	}

	for r, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d numeric values, want %d", r, len(row), n)
		}
		for i, v := range row {
			s.Mean[i] += v
		}
	}
	count := float64(len(rows))
	for i := range s.Mean {
		s.Mean[i] /= count
	}

	for _, row := range rows {
		for i, v := range row {
			d := v - s.Mean[i]
			s.Scale[i] += d * d
		}
	}
	for i := range s.Scale {
		s.Scale[i] = math.Sqrt(s.Scale[i] / count)
		if s.Scale[i] == 0 {
			s.Scale[i] = 1
		}
	}
	return s, nil
}

// Transform writes the scaled values into dst and returns the count written
func (s *StandardScaler) Transform(values []float64, dst []float64) int {
	for i := range s.Mean {
		dst[i] = (values[i] - s.Mean[i]) / s.Scale[i]
	}
	return len(s.Mean)
}

func (s *StandardScaler) validate() error {
	if len(s.Mean) != len(s.Columns) || len(s.Scale) != len(s.Columns) {
		return fmt.Errorf("scaler has %d means and %d scales for %d columns", len(s.Mean), len(s.Scale), len(s.Columns))
	}
	for i := range s.Scale {
		if !finite(s.Mean[i]) || !finite(s.Scale[i]) || s.Scale[i] <= 0 {
			return fmt.Errorf("scaler column %s has invalid parameters", s.Columns[i])
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
