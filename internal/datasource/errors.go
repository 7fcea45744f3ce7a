package datasource

import (
	"errors"
)

// SourceError represents a failure reading a table from a location
type SourceError struct {
	Source  string // Source name ("file" or "http")
	Code    string // Error code (e.g., "not_found")
	Message string
	Err     error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the underlying error to errors.Is
func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeInvalidData  = "invalid_data"
	ErrCodeNetworkError = "network_error"
	ErrCodeServerError  = "server_error"
	ErrCodeUnsupported  = "unsupported_location"
)

var (
	// ErrMissingColumn is returned when a required column is absent from a table header
	ErrMissingColumn = errors.New("missing required column")
	// ErrInvalidData is returned when a cell cannot be parsed
	ErrInvalidData = errors.New("invalid data format")
	ErrNotFound    = errors.New("table not found")
)

// NewSourceError creates a new source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
