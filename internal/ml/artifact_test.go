package ml

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savedModel(t *testing.T) (string, *Model) {
	t.Helper()
	p, rows, err := fittedPipeline(300)
	require.NoError(t, err)

	m := NewModel(p, ModelInfo{Name: "chase", TrainingRows: len(rows)})
	path := filepath.Join(t.TempDir(), "models", "pipe.json")
	require.NoError(t, Save(path, m))
	return path, m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path, m := savedModel(t)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.Info.Version, loaded.Version())
	assert.Equal(t, "chase", loaded.Info.Name)
	assert.Equal(t, 300, loaded.Info.TrainingRows)

	for _, r := range syntheticRows(50, 99) {
		want, err := m.PredictProba(r.Row)
		require.NoError(t, err)
		got, err := loaded.PredictProba(r.Row)
		require.NoError(t, err)
		assert.InDelta(t, want[1], got[1], 1e-12)
	}

	assert.Equal(t, []string{"Chennai", "Mumbai"}, loaded.Categories("city"))
	assert.Nil(t, loaded.Categories("venue"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestLoadIncompatibleArtifact(t *testing.T) {
	path, _ := savedModel(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	mutate := func(t *testing.T, fn func(doc map[string]any)) string {
		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		fn(doc)
		out, err := json.Marshal(doc)
		require.NoError(t, err)
		p := filepath.Join(t.TempDir(), "pipe.json")
		require.NoError(t, os.WriteFile(p, out, 0o644))
		return p
	}

	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "not json",
			path: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "pipe.json")
				require.NoError(t, os.WriteFile(p, []byte("not json"), 0o644))
				return p
			},
		},
		{
			name: "schema version",
			path: func(t *testing.T) string {
				return mutate(t, func(doc map[string]any) { doc["schema_version"] = 99 })
			},
		},
		{
			name: "missing pipeline",
			path: func(t *testing.T) string {
				return mutate(t, func(doc map[string]any) { delete(doc, "pipeline") })
			},
		},
		{
			name: "weight dimension",
			path: func(t *testing.T) string {
				return mutate(t, func(doc map[string]any) {
					clf := doc["pipeline"].(map[string]any)["classifier"].(map[string]any)
					clf["weights"] = []float64{1, 2}
				})
			},
		},
		{
			name: "column order",
			path: func(t *testing.T) string {
				return mutate(t, func(doc map[string]any) {
					sc := doc["pipeline"].(map[string]any)["scaler"].(map[string]any)
					cols := sc["columns"].([]any)
					cols[0], cols[1] = cols[1], cols[0]
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			assert.ErrorIs(t, err, ErrIncompatibleArtifact)
		})
	}
}

func TestSaveUnfitted(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "pipe.json"), NewModel(NewPipeline(Options{}), ModelInfo{}))
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestInitShared(t *testing.T) {
	path, m := savedModel(t)

	assert.Nil(t, Shared())

	loaded, err := InitShared(path)
	require.NoError(t, err)
	assert.Equal(t, m.Version(), loaded.Version())
	assert.Same(t, loaded, Shared())

	again, err := InitShared(filepath.Join(t.TempDir(), "other.json"))
	require.NoError(t, err)
	assert.Same(t, loaded, again)
}
