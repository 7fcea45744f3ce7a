package models

import (
	"time"

	"github.com/google/uuid"
)

// ModelRecord represents a trained pipeline artifact known to the registry
type ModelRecord struct {
	ID                 uuid.UUID `db:"id" json:"id" validate:"required"`
	Name               string    `db:"name" json:"name" validate:"required"`
	Version            string    `db:"version" json:"version" validate:"required"`
	Path               string    `db:"path" json:"path" validate:"required"`
	ValidationAccuracy float64   `db:"validation_accuracy" json:"validation_accuracy" validate:"gte=0,lte=1"`
	TrainingRows       int       `db:"training_rows" json:"training_rows" validate:"gt=0"`
	TrainedAt          time.Time `db:"trained_at" json:"trained_at" validate:"required"`
	Active             bool      `db:"active" json:"active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// IsActive checks if the model is the one served by default
func (m *ModelRecord) IsActive() bool {
	return m.Active
}
