package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/chase-predictor/internal/database"
	"github.com/yourusername/chase-predictor/internal/models"
)

func TestNewRepositoriesRequiresDB(t *testing.T) {
	repos, err := NewRepositories(nil)
	assert.Error(t, err)
	assert.Nil(t, repos)
}

func newRecord(version string, trainedAt time.Time) *models.ModelRecord {
	return &models.ModelRecord{
		Name:               "chase-win-probability",
		Version:            version,
		Path:               "models/" + version + ".json",
		ValidationAccuracy: 0.81,
		TrainingRows:       1200,
		TrainedAt:          trainedAt,
	}
}

func TestModelRepositoryLifecycle(t *testing.T) {
	db := database.SetupTestDB(t)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Second)
	first := newRecord("v1", now.Add(-time.Hour))
	second := newRecord("v2", now)
	require.NoError(t, repos.Model.Create(ctx, first))
	require.NoError(t, repos.Model.Create(ctx, second))
	assert.NotEqual(t, uuid.Nil, first.ID)

	_, err = repos.Model.GetActive(ctx, first.Name)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, repos.Model.SetActive(ctx, first.ID))
	require.NoError(t, repos.Model.SetActive(ctx, second.ID))

	active, err := repos.Model.GetActive(ctx, first.Name)
	require.NoError(t, err)
	assert.Equal(t, "v2", active.Version)

	old, err := repos.Model.GetByVersion(ctx, first.Name, "v1")
	require.NoError(t, err)
	assert.False(t, old.IsActive())

	list, err := repos.Model.List(ctx, first.Name, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "v2", list[0].Version)

	err = repos.Model.SetActive(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
