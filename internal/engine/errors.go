// ABOUTME: Error values returned by the playback engine
// ABOUTME: Decode failures are wrapped so callers can inspect them with errors.As
package engine

import "errors"

// ErrClosed is returned by operations invoked after Close.
var ErrClosed = errors.New("engine closed")
