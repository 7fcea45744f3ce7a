package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/yourusername/chase-predictor/internal/config"
)

// TestDatabaseEnv names the variable that enables database integration tests.
// Its value is the database host; the remaining settings use CHASE_DATABASE_*
// variables or defaults.
const TestDatabaseEnv = "CHASE_TEST_DATABASE_HOST"

// SetupTestDB connects to the integration database, skipping the test when
// none is configured
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	host := os.Getenv(TestDatabaseEnv)
	if host == "" {
		t.Skipf("integration test - set %s to run", TestDatabaseEnv)
	}

	cfg := &config.Config{Database: config.DatabaseConfig{
		Enabled:        true,
		Host:           host,
		Port:           envInt("CHASE_DATABASE_PORT", 5432),
		Name:           envOr("CHASE_DATABASE_NAME", "chase_predictor_test"),
		User:           envOr("CHASE_DATABASE_USER", "postgres"),
		Password:       os.Getenv("CHASE_DATABASE_PASSWORD"),
		SSLMode:        "disable",
		MaxConnections: 2,
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Initialize(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	t.Cleanup(func() { TeardownTestDB(t, db) })
	return db
}

// TeardownTestDB removes registry rows and closes the pool
func TeardownTestDB(t *testing.T, db *DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.pool.Exec(ctx, "TRUNCATE models"); err != nil {
		t.Logf("warning: failed to truncate test registry: %v", err)
	}
	db.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
