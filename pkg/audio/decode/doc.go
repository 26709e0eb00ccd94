// ABOUTME: Audio decoder package for multiple container support
// ABOUTME: Provides the Decoder interface, signature detection and a format registry
// Package decode turns opaque compressed audio blobs into PCM buffers.
//
// Supports: WAV, MP3, FLAC, Ogg Vorbis, Ogg Opus.
//
// All decoders implement the Decoder interface and output interleaved
// float64 samples in [-1, 1]. The Registry sniffs a blob's container
// signature and dispatches to the matching decoder; every failure is
// returned as *Error so callers can treat decoding as a single
// non-fatal boundary.
//
// Example:
//
//	reg := decode.NewRegistry()
//	buf, err := reg.Decode(blob)
//	var decErr *decode.Error
//	if errors.As(err, &decErr) {
//	    // unreadable or unsupported audio; nothing was allocated
//	}
package decode
