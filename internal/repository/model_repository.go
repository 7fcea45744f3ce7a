package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/chase-predictor/internal/database"
	"github.com/yourusername/chase-predictor/internal/models"
)

const modelColumns = `id, name, version, path, validation_accuracy, training_rows, trained_at, active, created_at`

// PostgresModelRepository implements ModelRepository for PostgreSQL
type PostgresModelRepository struct {
	db *database.DB
}

// NewPostgresModelRepository creates a new model repository
func NewPostgresModelRepository(db *database.DB) ModelRepository {
	return &PostgresModelRepository{db: db}
}

// Create inserts a new model record
func (m *PostgresModelRepository) Create(ctx context.Context, model *models.ModelRecord) error {
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}

	query := `
		INSERT INTO models (id, name, version, path, validation_accuracy, training_rows, trained_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := m.db.GetPool().QueryRow(ctx, query,
		model.ID, model.Name, model.Version, model.Path, model.ValidationAccuracy, model.TrainingRows, model.TrainedAt, model.Active,
	).Scan(&model.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}

	return nil
}

// GetByID retrieves a model by ID
func (m *PostgresModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ModelRecord, error) {
	query := `SELECT ` + modelColumns + ` FROM models WHERE id = $1`

	model, err := scanModel(m.db.GetPool().QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get model: %w", err)
	}
	return model, nil
}

// GetActive retrieves the active model for a name
func (m *PostgresModelRepository) GetActive(ctx context.Context, name string) (*models.ModelRecord, error) {
	query := `SELECT ` + modelColumns + ` FROM models WHERE name = $1 AND active = true`

	model, err := scanModel(m.db.GetPool().QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("failed to get active model: %w", err)
	}
	return model, nil
}

// GetByVersion retrieves a specific model version
func (m *PostgresModelRepository) GetByVersion(ctx context.Context, name, version string) (*models.ModelRecord, error) {
	query := `SELECT ` + modelColumns + ` FROM models WHERE name = $1 AND version = $2`

	model, err := scanModel(m.db.GetPool().QueryRow(ctx, query, name, version))
	if err != nil {
		return nil, fmt.Errorf("failed to get model by version: %w", err)
	}
	return model, nil
}

// List returns the most recently trained models for a name
func (m *PostgresModelRepository) List(ctx context.Context, name string, limit int) ([]*models.ModelRecord, error) {
	query := `SELECT ` + modelColumns + ` FROM models WHERE name = $1 ORDER BY trained_at DESC LIMIT $2`

	rows, err := m.db.GetPool().Query(ctx, query, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}
	defer rows.Close()

	var records []*models.ModelRecord
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		records = append(records, model)
	}

	return records, rows.Err()
}

// SetActive sets a model as active and deactivates other versions
func (m *PostgresModelRepository) SetActive(ctx context.Context, id uuid.UUID) error {
	model, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return m.db.WithTransaction(ctx, func(ctx context.Context) error {
		tx, _ := database.TxFromContext(ctx)

		if _, err := tx.Exec(ctx, "UPDATE models SET active = false WHERE name = $1 AND id != $2", model.Name, id); err != nil {
			return fmt.Errorf("failed to deactivate other versions: %w", err)
		}

		tag, err := tx.Exec(ctx, "UPDATE models SET active = true WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("failed to activate model: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

func scanModel(row pgx.Row) (*models.ModelRecord, error) {
	model := &models.ModelRecord{}
	err := row.Scan(
		&model.ID, &model.Name, &model.Version, &model.Path, &model.ValidationAccuracy,
		&model.TrainingRows, &model.TrainedAt, &model.Active, &model.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model, nil
}
