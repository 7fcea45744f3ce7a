package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AccessLogger logs HTTP requests.
type AccessLogger struct {
	*logrus.Entry
}

// NewAccessLogger creates a new access logger.
func NewAccessLogger(baseLogger *logrus.Logger) *AccessLogger {
	return &AccessLogger{
		Entry: baseLogger.WithField("component", "http"),
	}
}

// LogRequest logs a completed request; server errors log at error level.
func (al *AccessLogger) LogRequest(requestID, method, path string, status int, latency time.Duration, remoteIP string) {
	entry := al.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
		"status":     status,
		"latency_ms": float64(latency.Microseconds()) / 1000,
		"remote_ip":  remoteIP,
	})
	switch {
	case status >= 500:
		entry.Error("Request failed")
	case status >= 400:
		entry.Warn("Request rejected")
	default:
		entry.Info("Request completed")
	}
}
