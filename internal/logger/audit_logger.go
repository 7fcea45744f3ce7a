package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger records changes to which model is deployed.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogArtifactWritten logs a new model artifact on disk.
func (al *AuditLogger) LogArtifactWritten(path, modelVersion string, trainedAt time.Time) {
	al.WithFields(logrus.Fields{
		"path":          path,
		"model_version": modelVersion,
		"trained_at":    trainedAt.Unix(),
	}).Info("Model artifact written")
}

// LogModelActivated logs a registry record becoming the active model.
func (al *AuditLogger) LogModelActivated(recordID, modelVersion, path string) {
	al.WithFields(logrus.Fields{
		"record_id":     recordID,
		"model_version": modelVersion,
		"path":          path,
	}).Info("Model activated")
}

// LogScheduledRun logs the outcome of a scheduled retraining run.
func (al *AuditLogger) LogScheduledRun(schedule string, started time.Time, err error) {
	entry := al.WithFields(logrus.Fields{
		"schedule":    schedule,
		"started_at":  started.Unix(),
		"duration_ms": time.Since(started).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("Scheduled retraining failed")
		return
	}
	entry.Info("Scheduled retraining completed")
}
