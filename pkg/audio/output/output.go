// ABOUTME: Audio output interface definitions
// ABOUTME: Device opens routes; a Route owns at most one active playback source
package output

import (
	"errors"
	"time"

	"github.com/loopdeck/loopdeck-go/pkg/audio"
)

var (
	// ErrRouteClosed reports an operation against a route whose resources
	// were already released. Stale callers treat it as a no-op.
	ErrRouteClosed = errors.New("output route closed")

	// ErrDeviceClosed reports an operation against a closed device.
	ErrDeviceClosed = errors.New("output device closed")
)

// Device owns the audio backend and opens playback routes at its fixed
// output format.
type Device interface {
	// OpenRoute creates a new exclusive playback route.
	OpenRoute() (Route, error)

	// SampleRate returns the device's fixed output rate.
	SampleRate() int

	// Close releases the device.
	Close() error
}

// Route owns the output path for one playback session: a loaded buffer,
// at most one active source, a master volume gain and a per-source
// fade-in gain.
type Route interface {
	// Load prepares a decoded buffer for playback, adapting its sample
	// rate and channel layout to the device format.
	Load(buf *audio.Buffer) error

	// Start replaces the current source with a new one reading the loaded
	// buffer from offset. A positive fadeIn ramps the source gain
	// linearly from zero without affecting position tracking.
	Start(offset, fadeIn time.Duration) error

	// Stop silences and releases the current source, if any.
	Stop()

	// SetVolume sets the master gain in [0, 1], applied to the current
	// source and any started later.
	SetVolume(v float64)

	// Close releases the route. Further Load/Start calls return
	// ErrRouteClosed. Idempotent.
	Close() error
}
