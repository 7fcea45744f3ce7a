package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/chase-predictor/internal/config"
	"github.com/yourusername/chase-predictor/internal/dataset"
	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/ml"
	"github.com/yourusername/chase-predictor/internal/models"
	"github.com/yourusername/chase-predictor/internal/repository"
)

// TableLoader reads the historical match and delivery tables
type TableLoader interface {
	LoadMatches(ctx context.Context, location string) ([]models.MatchRecord, error)
	LoadDeliveries(ctx context.Context, location string) ([]models.DeliveryRecord, error)
}

// TrainingOptions configure a training run
type TrainingOptions struct {
	MatchesPath    string
	DeliveriesPath string
	TestFraction   float64
	Seed           int64
	ModelName      string
	ArtifactPath   string
	ReportPath     string
	Pipeline       ml.Options
}

// TrainingOptionsFromConfig maps configuration onto TrainingOptions
func TrainingOptionsFromConfig(cfg *config.Config) TrainingOptions {
	return TrainingOptions{
		MatchesPath:    cfg.Training.MatchesPath,
		DeliveriesPath: cfg.Training.DeliveriesPath,
		TestFraction:   cfg.Training.TestFraction,
		Seed:           cfg.Training.Seed,
		ModelName:      cfg.Model.Name,
		ArtifactPath:   cfg.Model.ArtifactPath,
		ReportPath:     cfg.Model.ReportPath(),
		Pipeline: ml.Options{
			C:       cfg.Training.C,
			MaxIter: cfg.Training.MaxIter,
			Tol:     cfg.Training.Tol,
		},
	}
}

// TrainingReport is written next to the artifact after every successful run
type TrainingReport struct {
	RunID              string         `json:"run_id"`
	ModelName          string         `json:"model_name"`
	ModelVersion       string         `json:"model_version"`
	ArtifactPath       string         `json:"artifact_path"`
	TrainedAt          time.Time      `json:"trained_at"`
	DurationSeconds    float64        `json:"duration_seconds"`
	Matches            int            `json:"matches"`
	Deliveries         int            `json:"deliveries"`
	DuplicateBalls     int            `json:"duplicate_balls"`
	Rows               int            `json:"rows"`
	PositiveRows       int            `json:"positive_rows"`
	Dropped            map[string]int `json:"dropped"`
	TrainRows          int            `json:"train_rows"`
	TestRows           int            `json:"test_rows"`
	ValidationAccuracy float64        `json:"validation_accuracy"`
	TrainingAccuracy   float64        `json:"training_accuracy"`
	Iterations         int            `json:"iterations"`
	Converged          bool           `json:"converged"`
	TestFraction       float64        `json:"test_fraction"`
	Seed               int64          `json:"seed"`
	C                  float64        `json:"c"`
	RegistryID         string         `json:"registry_id,omitempty"`
}

// TrainingService fits and persists the win-probability model
type TrainingService struct {
	loader   TableLoader
	repo     repository.ModelRepository
	opts     TrainingOptions
	logger   *logrus.Logger
	mlLogger *logger.MLLogger
	audit    *logger.AuditLogger
}

// NewTrainingService creates a training service. repo may be nil, in which
// case no registry record is written.
func NewTrainingService(loader TableLoader, repo repository.ModelRepository, opts TrainingOptions, log *logrus.Logger) *TrainingService {
	if log == nil {
		log = logger.Discard()
	}
	if opts.ReportPath == "" && opts.ArtifactPath != "" {
		opts.ReportPath = opts.ArtifactPath + ".report.json"
	}
	return &TrainingService{
		loader:   loader,
		repo:     repo,
		opts:     opts,
		logger:   log,
		mlLogger: logger.NewMLLogger(log),
		audit:    logger.NewAuditLogger(log),
	}
}

// Run loads the tables, builds the training frame, reports hold-out
// accuracy, then fits on every row and persists that model
func (s *TrainingService) Run(ctx context.Context) (*TrainingReport, error) {
	start := time.Now()
	report, err := s.run(ctx, start)

	ml.MLTrainingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		ml.MLTrainingJobsTotal.WithLabelValues("failure").Inc()
		s.logger.WithError(err).Error("Training run failed")
		return nil, err
	}
	ml.MLTrainingJobsTotal.WithLabelValues("success").Inc()
	return report, nil
}

func (s *TrainingService) run(ctx context.Context, start time.Time) (*TrainingReport, error) {
	runID := uuid.New()
	log := s.logger.WithFields(logrus.Fields{
		"run_id":     runID,
		"matches":    s.opts.MatchesPath,
		"deliveries": s.opts.DeliveriesPath,
	})
	log.Info("Starting training run")

	matches, err := s.loader.LoadMatches(ctx, s.opts.MatchesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}
	deliveries, err := s.loader.LoadDeliveries(ctx, s.opts.DeliveriesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load deliveries: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, stats, err := dataset.Build(matches, deliveries)
	if err != nil {
		return nil, fmt.Errorf("failed to build training frame: %w", err)
	}
	s.mlLogger.LogFrameBuilt(stats.Fields())
	ml.MLTrainingRows.Set(float64(len(rows)))

	train, test, err := ml.StratifiedSplit(rows, s.opts.TestFraction, s.opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to split training frame: %w", err)
	}

	holdout := ml.NewPipeline(s.opts.Pipeline)
	if err := holdout.Fit(train); err != nil {
		return nil, fmt.Errorf("failed to fit validation model: %w", err)
	}
	accuracy, err := holdout.Score(test)
	if err != nil {
		return nil, fmt.Errorf("failed to score validation model: %w", err)
	}
	ml.MLValidationAccuracy.Set(accuracy)
	log.WithFields(logrus.Fields{
		"train_rows": len(train),
		"test_rows":  len(test),
		"accuracy":   accuracy,
	}).Info("Validation accuracy computed")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	final := ml.NewPipeline(s.opts.Pipeline)
	if err := final.Fit(rows); err != nil {
		return nil, fmt.Errorf("failed to fit model: %w", err)
	}
	if !final.Classifier.Converged {
		log.WithFields(logrus.Fields{
			"iterations": final.Classifier.Iters,
			"max_iter":   final.Classifier.MaxIter,
			"tol":        final.Classifier.Tol,
		}).Warn("Classifier did not converge; probabilities may be poorly calibrated")
	}
	trainingAccuracy, err := final.Score(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to score model: %w", err)
	}

	model := ml.NewModel(final, ml.ModelInfo{
		Name:               s.opts.ModelName,
		TrainingRows:       len(rows),
		PositiveRows:       stats.Positive,
		ValidationAccuracy: accuracy,
		TestFraction:       s.opts.TestFraction,
		Seed:               s.opts.Seed,
	})
	if err := ml.Save(s.opts.ArtifactPath, model); err != nil {
		return nil, fmt.Errorf("failed to save model: %w", err)
	}
	s.audit.LogArtifactWritten(s.opts.ArtifactPath, model.Version(), model.Info.TrainedAt)

	report := &TrainingReport{
		RunID:              runID.String(),
		ModelName:          s.opts.ModelName,
		ModelVersion:       model.Version(),
		ArtifactPath:       s.opts.ArtifactPath,
		TrainedAt:          model.Info.TrainedAt,
		Matches:            stats.Matches,
		Deliveries:         stats.Deliveries,
		DuplicateBalls:     stats.Duplicates,
		Rows:               len(rows),
		PositiveRows:       stats.Positive,
		Dropped:            stats.Dropped,
		TrainRows:          len(train),
		TestRows:           len(test),
		ValidationAccuracy: accuracy,
		TrainingAccuracy:   trainingAccuracy,
		Iterations:         final.Classifier.Iters,
		Converged:          final.Classifier.Converged,
		TestFraction:       s.opts.TestFraction,
		Seed:               s.opts.Seed,
		C:                  final.Classifier.C,
	}

	if s.repo != nil {
		id, err := s.register(ctx, model)
		if err != nil {
			return nil, err
		}
		report.RegistryID = id.String()
	}

	report.DurationSeconds = time.Since(start).Seconds()
	if err := writeReport(s.opts.ReportPath, report); err != nil {
		return nil, err
	}

	s.mlLogger.LogModelTraining(s.opts.ModelName, report.DurationSeconds,
		map[string]float64{
			"validation_accuracy": accuracy,
			"training_accuracy":   trainingAccuracy,
		},
		map[string]interface{}{
			"c":             final.Classifier.C,
			"max_iter":      final.Classifier.MaxIter,
			"tol":           final.Classifier.Tol,
			"iterations":    final.Classifier.Iters,
			"converged":     final.Classifier.Converged,
			"test_fraction": s.opts.TestFraction,
			"seed":          s.opts.Seed,
		})

	return report, nil
}

func (s *TrainingService) register(ctx context.Context, model *ml.Model) (uuid.UUID, error) {
	record := &models.ModelRecord{
		ID:                 uuid.New(),
		Name:               model.Info.Name,
		Version:            model.Version(),
		Path:               s.opts.ArtifactPath,
		ValidationAccuracy: model.Info.ValidationAccuracy,
		TrainingRows:       model.Info.TrainingRows,
		TrainedAt:          model.Info.TrainedAt,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return uuid.Nil, fmt.Errorf("failed to register model: %w", err)
	}
	if err := s.repo.SetActive(ctx, record.ID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to activate model: %w", err)
	}
	s.audit.LogModelActivated(record.ID.String(), record.Version, record.Path)
	return record.ID, nil
}

func writeReport(path string, report *TrainingReport) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal training report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write training report: %w", err)
	}
	return nil
}
