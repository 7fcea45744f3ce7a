package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneHotEncoderDropsFirstCategory(t *testing.T) {
	enc, err := FitOneHotEncoder([]string{"team", "city"}, [][]string{
		{"Mumbai Indians", "Mumbai"},
		{"Chennai Super Kings", "Chennai"},
		{"Delhi Capitals", "Mumbai"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Chennai Super Kings", "Delhi Capitals", "Mumbai Indians"}, enc.Categories[0])
	assert.Equal(t, []string{"Chennai", "Mumbai"}, enc.Categories[1])
	assert.Equal(t, 3, enc.Width())

	tests := []struct {
		name   string
		values []string
		want   []float64
	}{
		{name: "baseline categories", values: []string{"Chennai Super Kings", "Chennai"}, want: []float64{0, 0, 0}},
		{name: "second team", values: []string{"Delhi Capitals", "Chennai"}, want: []float64{1, 0, 0}},
		{name: "last team and city", values: []string{"Mumbai Indians", "Mumbai"}, want: []float64{0, 1, 1}},
		{name: "unseen values", values: []string{"Kochi Tuskers Kerala", "Kochi"}, want: []float64{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := []float64{9, 9, 9}
			n := enc.Encode(tt.values, dst)
			assert.Equal(t, 3, n)
			assert.Equal(t, tt.want, dst)
		})
	}
}

func TestOneHotEncoderRejectsRaggedRows(t *testing.T) {
	_, err := FitOneHotEncoder([]string{"team", "city"}, [][]string{{"Mumbai Indians"}})
	assert.Error(t, err)
}

func TestStandardScaler(t *testing.T) {
	s, err := FitStandardScaler([]string{"a", "b"}, [][]float64{{1, 5}, {3, 5}})
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 5}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Scale)

	dst := make([]float64, 2)
	s.Transform([]float64{4, 7}, dst)
	assert.Equal(t, []float64{2, 2}, dst)

	_, err = FitStandardScaler([]string{"a"}, nil)
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)
}
