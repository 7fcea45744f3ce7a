package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/chase-predictor/internal/models"
)

// SchemaVersion is bumped whenever the artifact layout changes
const SchemaVersion = 1

// ModelInfo describes how an artifact was produced
type ModelInfo struct {
	Name               string    `json:"name"`
	Version            string    `json:"version"`
	TrainedAt          time.Time `json:"trained_at"`
	TrainingRows       int       `json:"training_rows"`
	PositiveRows       int       `json:"positive_rows"`
	ValidationAccuracy float64   `json:"validation_accuracy"`
	TestFraction       float64   `json:"test_fraction"`
	Seed               int64     `json:"seed"`
}

// Model is a fitted pipeline together with its provenance. It is read-only
// once loaded and safe for concurrent use.
type Model struct {
	Info     ModelInfo
	Pipeline *Pipeline
}

// NewModel wraps a fitted pipeline, assigning a fresh version when info has none
func NewModel(p *Pipeline, info ModelInfo) *Model {
	if info.Version == "" {
		info.Version = uuid.NewString()
	}
	if info.TrainedAt.IsZero() {
		info.TrainedAt = time.Now().UTC()
	}
	return &Model{Info: info, Pipeline: p}
}

// PredictProba returns [loss, win] probabilities
func (m *Model) PredictProba(row models.FeatureRow) ([2]float64, error) {
	return m.Pipeline.PredictProba(row)
}

// Version returns the artifact version
func (m *Model) Version() string {
	return m.Info.Version
}

// Categories returns the training categories of a categorical column
func (m *Model) Categories(column string) []string {
	for i, c := range m.Pipeline.Encoder.Columns {
		if c == column {
			return append([]string(nil), m.Pipeline.Encoder.Categories[i]...)
		}
	}
	return nil
}

type artifact struct {
	SchemaVersion int       `json:"schema_version"`
	Info          ModelInfo `json:"info"`
	Pipeline      *Pipeline `json:"pipeline"`
}

// Save writes the model to path as JSON. The file is written to a temporary
// name in the same directory and renamed into place.
func Save(path string, m *Model) error {
	if path == "" {
		return fmt.Errorf("artifact path is required")
	}
	if m == nil || m.Pipeline == nil || !m.Pipeline.fitted() {
		return ErrNotFitted
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	data, err := json.MarshalIndent(artifact{SchemaVersion: SchemaVersion, Info: m.Info, Pipeline: m.Pipeline}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return nil
}

// Load reads and checks an artifact written by Save
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIncompatibleArtifact, path, err)
	}
	if a.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d, want %d", ErrIncompatibleArtifact, a.SchemaVersion, SchemaVersion)
	}
	if a.Pipeline == nil {
		return nil, fmt.Errorf("%w: missing pipeline", ErrIncompatibleArtifact)
	}
	if err := a.Pipeline.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleArtifact, err)
	}
	a.Pipeline.Encoder.buildIndex()

	return &Model{Info: a.Info, Pipeline: a.Pipeline}, nil
}
