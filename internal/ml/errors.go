package ml

import "errors"

var (
	// ErrArtifactNotFound indicates the model artifact does not exist
	ErrArtifactNotFound = errors.New("model artifact not found")

	// ErrIncompatibleArtifact indicates the artifact is unreadable or does not match this build
	ErrIncompatibleArtifact = errors.New("incompatible model artifact")

	// ErrNotFitted indicates a pipeline was used before Fit
	ErrNotFitted = errors.New("pipeline not fitted")

	// ErrEmptyTrainingSet indicates Fit was called with no rows
	ErrEmptyTrainingSet = errors.New("empty training set")

	// ErrSingleClass indicates the training labels contain one class only
	ErrSingleClass = errors.New("training labels contain a single class")

	// ErrInvalidSplit indicates the requested hold-out cannot be drawn
	ErrInvalidSplit = errors.New("invalid train/test split")

	// ErrModelNotLoaded indicates the shared model has not been initialised
	ErrModelNotLoaded = errors.New("model not loaded")
)
