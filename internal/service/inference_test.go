package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/chase-predictor/internal/features"
	"github.com/yourusername/chase-predictor/internal/ml"
	"github.com/yourusername/chase-predictor/internal/models"
)

type stubPredictor struct {
	proba [2]float64
	err   error
	rows  []models.FeatureRow
}

func (p *stubPredictor) PredictProba(row models.FeatureRow) ([2]float64, error) {
	p.rows = append(p.rows, row)
	return p.proba, p.err
}

func chaseRequest() models.PredictionRequest {
	return models.PredictionRequest{
		BattingTeam:   "Mumbai Indians",
		BowlingTeam:   "Chennai Super Kings",
		City:          "Mumbai",
		Target:        180,
		Score:         100,
		OversDone:     "12.3",
		WicketsFallen: 3,
	}
}

func TestPredict(t *testing.T) {
	stub := &stubPredictor{proba: [2]float64{0.4, 0.6}}
	svc := NewInferenceService(stub, nil, nil)

	result, err := svc.Predict(context.Background(), chaseRequest())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Mumbai Indians", result.BattingTeam)
	assert.Equal(t, "Chennai Super Kings", result.BowlingTeam)
	assert.Equal(t, 60, result.WinProb)
	assert.Equal(t, 40, result.LossProb)
	assert.InDelta(t, 100, result.WinProb+result.LossProb, 1)

	require.Len(t, stub.rows, 1)
	row := stub.rows[0]
	assert.Equal(t, 80.0, row.RunsLeft)
	assert.Equal(t, 45.0, row.BallsLeft)
	assert.Equal(t, 7.0, row.WicketsLeft)
	assert.Equal(t, 180.0, row.Target)
	assert.InDelta(t, 8.0, row.CurrentRunRate, 1e-12)
	assert.InDelta(t, 80.0*6/45, row.RequiredRunRate, 1e-12)
	assert.Equal(t, "Mumbai", row.City)
}

func TestPredictMatchesTrainingFeatures(t *testing.T) {
	stub := &stubPredictor{proba: [2]float64{0.5, 0.5}}
	svc := NewInferenceService(stub, nil, nil)

	_, err := svc.Predict(context.Background(), chaseRequest())
	require.NoError(t, err)

	snap := features.Snapshot("Mumbai Indians", "Chennai Super Kings", "Mumbai", 180, 100, 75, 3)
	assert.Equal(t, snap.Row(), stub.rows[0])
}

func TestPredictValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *models.PredictionRequest)
		teams   []string
		field   string
		wantErr error
	}{
		{name: "same teams", mutate: func(r *models.PredictionRequest) { r.BowlingTeam = r.BattingTeam }, field: "bowling_team"},
		{name: "same teams before overs", mutate: func(r *models.PredictionRequest) {
			r.BowlingTeam = r.BattingTeam
			r.OversDone = "garbage"
		}, field: "bowling_team"},
		{name: "unknown batting team", teams: []string{"Chennai Super Kings"}, field: "batting_team"},
		{name: "unknown bowling team", teams: []string{"Mumbai Indians"}, field: "bowling_team"},
		{name: "missing city", mutate: func(r *models.PredictionRequest) { r.City = "" }, field: "city"},
		{name: "negative target", mutate: func(r *models.PredictionRequest) { r.Target = -1 }, field: "target"},
		{name: "too many wickets", mutate: func(r *models.PredictionRequest) { r.WicketsFallen = 11 }, field: "wickets_fallen"},
		{name: "missing overs", mutate: func(r *models.PredictionRequest) { r.OversDone = " " }, wantErr: features.ErrOversRequired},
		{name: "malformed overs", mutate: func(r *models.PredictionRequest) { r.OversDone = "ten" }, wantErr: features.ErrOversMalformed},
		{name: "balls out of range", mutate: func(r *models.PredictionRequest) { r.OversDone = "10.6" }, wantErr: features.ErrBallsOutOfRange},
		{name: "overs out of range", mutate: func(r *models.PredictionRequest) { r.OversDone = "20" }, wantErr: features.ErrOversOutOfRange},
		{name: "no ball bowled", mutate: func(r *models.PredictionRequest) { r.OversDone = "0.0" }, wantErr: ErrOversNotStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPredictor{proba: [2]float64{0.5, 0.5}}
			svc := NewInferenceService(stub, tt.teams, nil)

			req := chaseRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			result, err := svc.Predict(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, models.IsValidation(err))
			assert.Empty(t, stub.rows)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.field != "" {
				var verr *models.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}
}

func TestPredictConfiguredTeams(t *testing.T) {
	stub := &stubPredictor{proba: [2]float64{0.3, 0.7}}
	svc := NewInferenceService(stub, []string{"Mumbai Indians", "Chennai Super Kings"}, nil)

	result, err := svc.Predict(context.Background(), chaseRequest())
	require.NoError(t, err)
	assert.Equal(t, 70, result.WinProb)
}

func TestPredictAllowsPassedTarget(t *testing.T) {
	stub := &stubPredictor{proba: [2]float64{0.01, 0.99}}
	svc := NewInferenceService(stub, nil, nil)

	req := chaseRequest()
	req.Score = 185
	_, err := svc.Predict(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, -5.0, stub.rows[0].RunsLeft)
}

func TestPredictLastBall(t *testing.T) {
	stub := &stubPredictor{proba: [2]float64{0.5, 0.5}}
	svc := NewInferenceService(stub, nil, nil)

	req := chaseRequest()
	req.OversDone = "19.5"
	_, err := svc.Predict(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1.0, stub.rows[0].BallsLeft)
}

func TestPredictModelFailure(t *testing.T) {
	stub := &stubPredictor{err: errors.New("boom")}
	svc := NewInferenceService(stub, nil, nil)

	_, err := svc.Predict(context.Background(), chaseRequest())
	require.Error(t, err)
	assert.False(t, models.IsValidation(err))

	_, err = NewInferenceService(nil, nil, nil).Predict(context.Background(), chaseRequest())
	assert.ErrorIs(t, err, ml.ErrModelNotLoaded)
}

func TestPredictCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewInferenceService(&stubPredictor{}, nil, nil).Predict(ctx, chaseRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		p    float64
		want int
	}{
		{0, 0},
		{1, 100},
		{0.5, 50},
		{0.125, 12},
		{0.375, 38},
		{0.6049, 60},
		{0.999, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.p), "p=%v", tt.p)
	}
}
