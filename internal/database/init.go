// Package database manages the PostgreSQL pool backing the model registry.
package database

import (
	"context"
	"fmt"

	"github.com/yourusername/chase-predictor/internal/config"
)

// Schema creates the model registry table. Only one row per name is active.
const Schema = `
CREATE TABLE IF NOT EXISTS models (
	id                  UUID PRIMARY KEY,
	name                TEXT NOT NULL,
	version             TEXT NOT NULL,
	path                TEXT NOT NULL,
	validation_accuracy DOUBLE PRECISION NOT NULL,
	training_rows       INTEGER NOT NULL,
	trained_at          TIMESTAMPTZ NOT NULL,
	active              BOOLEAN NOT NULL DEFAULT FALSE,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (name, version)
);
CREATE INDEX IF NOT EXISTS models_active_idx ON models (name) WHERE active;
`

// Initialize creates a database connection pool and makes sure the registry
// schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply registry schema: %w", err)
	}

	return db, nil
}
