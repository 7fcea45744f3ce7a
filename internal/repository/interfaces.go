package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/chase-predictor/internal/models"
)

// ModelRepository defines the interface for model registry access
type ModelRepository interface {
	Create(ctx context.Context, model *models.ModelRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ModelRecord, error)
	GetActive(ctx context.Context, name string) (*models.ModelRecord, error)
	GetByVersion(ctx context.Context, name, version string) (*models.ModelRecord, error)
	List(ctx context.Context, name string, limit int) ([]*models.ModelRecord, error)
	SetActive(ctx context.Context, id uuid.UUID) error
}
