// ABOUTME: Error types for blob decoding
// ABOUTME: Defines the Error wrapper and sentinel values shared by all decoders
package decode

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat reports that no known container signature matched.
	ErrUnknownFormat = errors.New("unknown audio format")

	// ErrNoDecoder reports a detected format with no registered decoder.
	ErrNoDecoder = errors.New("no decoder registered for format")

	// ErrEmptyData reports an empty input blob.
	ErrEmptyData = errors.New("empty audio data")
)

// Error describes a failed attempt to decode an audio blob. It wraps the
// underlying container error and records the detected format.
type Error struct {
	Format Format
	Err    error
}

func (e *Error) Error() string {
	if e.Format == FormatUnknown {
		return fmt.Sprintf("decode audio: %v", e.Err)
	}
	return fmt.Sprintf("decode %s audio: %v", e.Format, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
