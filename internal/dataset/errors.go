package dataset

import "errors"

// ErrNoTrainingData is returned when cleaning leaves no rows
var ErrNoTrainingData = errors.New("no training rows after cleaning")
