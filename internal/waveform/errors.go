// ABOUTME: Error values for the waveform reduction pipeline
// ABOUTME: Worker failures carry a reason and never poison the cache
package waveform

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTargetPoints is returned when a reduction is requested
	// with a non-positive point count.
	ErrInvalidTargetPoints = errors.New("target points must be positive")

	// ErrWorkerClosed is returned for requests against a closed worker.
	ErrWorkerClosed = errors.New("waveform worker closed")
)

// WorkerError reports a failure inside the reduction worker, including
// recovered panics. No envelope is produced and nothing is cached.
type WorkerError struct {
	Reason string
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("waveform worker: %s", e.Reason)
}
