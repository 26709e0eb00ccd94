// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts decoded buffers between different sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling. Output routes use it to
// adapt decoded buffers to the fixed device rate once per session.
//
// Example:
//
//	out := resample.Buffer(decoded, 48000)
package resample
