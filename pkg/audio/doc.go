// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Buffer, LoopPoints and sample conversion functions
// Package audio provides fundamental audio types used throughout loopdeck.
//
// This package defines the core types shared by the decoder, the output
// routes and the playback engine:
//   - Buffer: decoded PCM audio as interleaved float64 samples in [-1, 1]
//   - LoopPoints: a start/end seconds pair defining a seamless-repeat window
//
// It also provides float ↔ 16-bit PCM sample conversion and a sine tone
// generator used by tests and examples.
//
// Example:
//
//	buf := audio.Sine(440, 2*time.Second, 48000, 2)
//	points := audio.LoopPoints{Start: 0.5, End: 1.5}.Clamp(buf.Seconds())
package audio
