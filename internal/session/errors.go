package session

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleLoad is returned by a load that was superseded by a newer SelectDifficulty.
	ErrStaleLoad      = errors.New("load superseded by a newer difficulty selection")
	ErrNotReady       = errors.New("session is not ready")
	ErrNotFinished    = errors.New("session is not finished")
	ErrAdvancePending = errors.New("already answered, waiting to advance")
	ErrNothingToRetry = errors.New("no failed load to retry")
	ErrClosed         = errors.New("session is closed")
)

// CatalogLoadError reports that the words of a difficulty could not be loaded.
// The session stays in StateLoading and the load can be retried.
type CatalogLoadError struct {
	Difficulty int
	Err        error
}

func (e *CatalogLoadError) Error() string {
	return fmt.Sprintf("failed to load words for difficulty %d: %v", e.Difficulty, e.Err)
}

func (e *CatalogLoadError) Unwrap() error {
	return e.Err
}
