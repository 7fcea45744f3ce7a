// Package ml fits, persists and serves the chase win-probability model.
package ml

import (
	"fmt"

	"github.com/yourusername/chase-predictor/internal/models"
)

// Predictor returns [loss, win] probabilities for a feature row
type Predictor interface {
	PredictProba(row models.FeatureRow) ([2]float64, error)
}

// Options configure the classifier
type Options struct {
	C       float64
	MaxIter int
	Tol     float64
}

// Pipeline is categorical one-hot encoding and numeric standardisation
// followed by logistic regression.
type Pipeline struct {
	Encoder    *OneHotEncoder      `json:"encoder"`
	Scaler     *StandardScaler     `json:"scaler"`
	Classifier *LogisticRegression `json:"classifier"`
}

// NewPipeline returns an unfitted pipeline
func NewPipeline(opts Options) *Pipeline {
	return &Pipeline{
		Classifier: NewLogisticRegression(opts.C, opts.MaxIter, opts.Tol),
	}
}

// Fit learns encoder categories, scaler parameters and classifier weights
func (p *Pipeline) Fit(rows []models.LabeledRow) error {
	if len(rows) == 0 {
		return ErrEmptyTrainingSet
	}

	cats := make([][]string, len(rows))
	nums := make([][]float64, len(rows))
	labels := make([]int, len(rows))
	for i, r := range rows {
		if !r.Row.Finite() {
			return fmt.Errorf("row %d (match %s) has non-finite features", i, r.MatchID)
		}
		cats[i] = r.Row.Categorical()
		nums[i] = r.Row.Numeric()
		labels[i] = r.Label
	}

	enc, err := FitOneHotEncoder(models.CategoricalColumns, cats)
	if err != nil {
		return fmt.Errorf("failed to fit encoder: %w", err)
	}
	scaler, err := FitStandardScaler(models.NumericColumns, nums)
	if err != nil {
		return fmt.Errorf("failed to fit scaler: %w", err)
	}
	p.Encoder = enc
	p.Scaler = scaler

	x := make([][]float64, len(rows))
	for i, r := range rows {
		x[i] = p.transform(r.Row)
	}
	if p.Classifier == nil {
		p.Classifier = NewLogisticRegression(0, 0, 0)
	}
	if err := p.Classifier.Fit(x, labels); err != nil {
		return fmt.Errorf("failed to fit classifier: %w", err)
	}
	return nil
}

// Width is the number of model inputs after encoding
func (p *Pipeline) Width() int {
	return p.Encoder.Width() + len(p.Scaler.Mean)
}

func (p *Pipeline) transform(row models.FeatureRow) []float64 {
	x := make([]float64, p.Width())
	n := p.Encoder.Encode(row.Categorical(), x)
	p.Scaler.Transform(row.Numeric(), x[n:])
	return x
}

func (p *Pipeline) fitted() bool {
	return p.Encoder != nil && p.Scaler != nil && p.Classifier != nil && p.Classifier.Weights != nil
}

// PredictProba returns [loss, win] probabilities, which sum to 1
func (p *Pipeline) PredictProba(row models.FeatureRow) ([2]float64, error) {
	if !p.fitted() {
		return [2]float64{}, ErrNotFitted
	}
	if !row.Finite() {
		return [2]float64{}, models.NewValidationError("features", "features must be finite numbers")
	}
	win := p.Classifier.Probability(p.transform(row))
	return [2]float64{1 - win, win}, nil
}

// Predict returns the class with the higher probability; ties go to 0
func (p *Pipeline) Predict(row models.FeatureRow) (int, error) {
	proba, err := p.PredictProba(row)
	if err != nil {
		return 0, err
	}
	if proba[1] > 0.5 {
		return 1, nil
	}
	return 0, nil
}

// Score returns the fraction of rows classified correctly
func (p *Pipeline) Score(rows []models.LabeledRow) (float64, error) {
	if len(rows) == 0 {
		return 0, ErrEmptyTrainingSet
	}
	correct := 0
	for _, r := range rows {
		pred, err := p.Predict(r.Row)
		if err != nil {
			return 0, err
		}
		if pred == r.Label {
			correct++
		}
	}
	return float64(correct) / float64(len(rows)), nil
}

func (p *Pipeline) validate() error {
	if !p.fitted() {
		return ErrNotFitted
	}
	if !equalStrings(p.Encoder.Columns, models.CategoricalColumns) {
		return fmt.Errorf("encoder columns %v, want %v", p.Encoder.Columns, models.CategoricalColumns)
	}
	if !equalStrings(p.Scaler.Columns, models.NumericColumns) {
		return fmt.Errorf("scaler columns %v, want %v", p.Scaler.Columns, models.NumericColumns)
	}
	if err := p.Encoder.validate(); err != nil {
		return err
	}
	if err := p.Scaler.validate(); err != nil {
		return err
	}
	return p.Classifier.validate(p.Width())
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
