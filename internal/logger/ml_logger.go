package logger

import (
	"github.com/sirupsen/logrus"
)

// MLLogger provides dedicated logging for model operations.
type MLLogger struct {
	*logrus.Entry
}

// NewMLLogger creates a new ML logger.
func NewMLLogger(baseLogger *logrus.Logger) *MLLogger {
	return &MLLogger{
		Entry: baseLogger.WithField("component", "ml"),
	}
}

// LogPrediction logs a served prediction.
func (ml *MLLogger) LogPrediction(modelVersion string, winProb, lossProb int, cacheHit bool, latencyMs float64) {
	ml.WithFields(logrus.Fields{
		"model_version": modelVersion,
		"win_prob":      winProb,
		"loss_prob":     lossProb,
		"cache_hit":     cacheHit,
		"latency_ms":    latencyMs,
	}).Debug("Prediction served")
}

// LogPredictionError logs a rejected or failed prediction.
func (ml *MLLogger) LogPredictionError(modelVersion string, errorReason string) {
	ml.WithFields(logrus.Fields{
		"model_version": modelVersion,
		"error_reason":  errorReason,
	}).Warn("Prediction failed")
}

// LogFrameBuilt logs the training frame summary.
func (ml *MLLogger) LogFrameBuilt(fields logrus.Fields) {
	ml.WithFields(fields).Info("Training frame built")
}

// LogModelTraining logs model training events.
func (ml *MLLogger) LogModelTraining(modelName string, trainingDuration float64, metrics map[string]float64, hyperparameters map[string]interface{}) {
	ml.WithFields(logrus.Fields{
		"model_name":        modelName,
		"training_duration": trainingDuration,
		"metrics":           metrics,
		"hyperparameters":   hyperparameters,
	}).Info("Model training completed")
}

// LogModelLoaded logs the artifact a server process is using.
func (ml *MLLogger) LogModelLoaded(path, modelVersion string, trainingRows int, validationAccuracy float64) {
	ml.WithFields(logrus.Fields{
		"path":                path,
		"model_version":       modelVersion,
		"training_rows":       trainingRows,
		"validation_accuracy": validationAccuracy,
	}).Info("Model loaded")
}
