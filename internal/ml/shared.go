package ml

import (
	"sync"
)

var (
	sharedOnce  sync.Once
	sharedModel *Model
	sharedErr   error
)

// InitShared loads the process-wide model from path. Only the first call
// loads; later calls return the first result whatever path they pass.
func InitShared(path string) (*Model, error) {
	sharedOnce.Do(func() {
		sharedModel, sharedErr = Load(path)
	})
	return sharedModel, sharedErr
}

// Shared returns the process-wide model, or nil before a successful InitShared
func Shared() *Model {
	return sharedModel
}
