// Package service provides the prediction and training workflows.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/chase-predictor/internal/features"
	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/metrics"
	"github.com/yourusername/chase-predictor/internal/ml"
	"github.com/yourusername/chase-predictor/internal/models"
)

// ErrOversNotStarted rejects a chase with no legal ball bowled yet
var ErrOversNotStarted = models.NewValidationError("overs_done", "Enter overs completed (e.g. 10.2).")

// cachedPredictor is implemented by predictors that can report cache hits
type cachedPredictor interface {
	PredictProbaCached(row models.FeatureRow) ([2]float64, bool, error)
}

// versionedPredictor is implemented by predictors that know their model version
type versionedPredictor interface {
	ModelVersion() (string, bool)
}

// InferenceService turns a live match state into win/loss percentages
type InferenceService struct {
	predictor ml.Predictor
	teams     map[string]bool
	validate  *validator.Validate
	logger    *logrus.Logger
	mlLogger  *logger.MLLogger
}

// NewInferenceService creates an inference service. When teams is non-empty
// both sides of a request must belong to it.
func NewInferenceService(predictor ml.Predictor, teams []string, log *logrus.Logger) *InferenceService {
	if log == nil {
		log = logger.Discard()
	}

	var known map[string]bool
	if len(teams) > 0 {
		known = make(map[string]bool, len(teams))
		for _, t := range teams {
			known[t] = true
		}
	}

	return &InferenceService{
		predictor: predictor,
		teams:     known,
		validate:  newRequestValidator(),
		logger:    log,
		mlLogger:  logger.NewMLLogger(log),
	}
}

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Predict scores req. Caller-correctable problems are returned as
// *models.ValidationError; anything else is an internal failure.
func (s *InferenceService) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	result, err := s.predict(ctx, req)
	switch {
	case err == nil:
		metrics.RecordPrediction("ok")
	case models.IsValidation(err):
		metrics.RecordPrediction("invalid")
	default:
		metrics.RecordPrediction("error")
		s.mlLogger.LogPredictionError(s.modelVersion(), err.Error())
	}
	return result, err
}

func (s *InferenceService) predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.BattingTeam == req.BowlingTeam {
		return nil, models.NewValidationError("bowling_team", "Batting and bowling teams must be different.")
	}

	if err := s.checkTeams(req); err != nil {
		return nil, err
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, requestError(err)
	}

	balls, err := features.ParseOvers(req.OversDone)
	if err != nil {
		return nil, err
	}
	if balls == 0 {
		return nil, ErrOversNotStarted
	}

	snap := features.Snapshot(req.BattingTeam, req.BowlingTeam, req.City, req.Target, req.Score, balls, req.WicketsFallen)

	if s.predictor == nil {
		return nil, ml.ErrModelNotLoaded
	}

	start := time.Now()
	var (
		proba    [2]float64
		cacheHit bool
	)
	if cp, ok := s.predictor.(cachedPredictor); ok {
		proba, cacheHit, err = cp.PredictProbaCached(snap.Row())
	} else {
		proba, err = s.predictor.PredictProba(snap.Row())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to score chase: %w", err)
	}

	result := &models.PredictionResult{
		Success:     true,
		BattingTeam: req.BattingTeam,
		BowlingTeam: req.BowlingTeam,
		WinProb:     Percent(proba[1]),
		LossProb:    Percent(proba[0]),
	}

	s.mlLogger.LogPrediction(s.modelVersion(), result.WinProb, result.LossProb, cacheHit,
		float64(time.Since(start).Microseconds())/1000)

	return result, nil
}

func (s *InferenceService) checkTeams(req models.PredictionRequest) error {
	if s.teams == nil {
		return nil
	}
	if !s.teams[req.BattingTeam] {
		return models.NewValidationError("batting_team", fmt.Sprintf("Unknown batting team %q.", req.BattingTeam))
	}
	if !s.teams[req.BowlingTeam] {
		return models.NewValidationError("bowling_team", fmt.Sprintf("Unknown bowling team %q.", req.BowlingTeam))
	}
	return nil
}

func (s *InferenceService) modelVersion() string {
	if vp, ok := s.predictor.(versionedPredictor); ok {
		if version, loaded := vp.ModelVersion(); loaded {
			return version
		}
	}
	return ""
}

// Percent converts a probability to a whole percentage, rounding half to even
func Percent(p float64) int {
	return int(decimal.NewFromFloat(p * 100).RoundBank(0).IntPart())
}

func requestError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError("", err.Error())
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return models.NewValidationError(fe.Field(), fmt.Sprintf("%s is required.", fe.Field()))
	case "gte", "lte":
		if fe.Field() == "wickets_fallen" {
			return models.NewValidationError(fe.Field(), "wickets_fallen must be between 0 and 10.")
		}
		return models.NewValidationError(fe.Field(), fmt.Sprintf("%s must not be negative.", fe.Field()))
	default:
		return models.NewValidationError(fe.Field(), fmt.Sprintf("%s is invalid.", fe.Field()))
	}
}
