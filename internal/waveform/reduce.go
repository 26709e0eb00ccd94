// ABOUTME: Pure RMS downsampling of sample buffers into fixed-length envelopes
// ABOUTME: Output is normalized so the loudest window peaks at exactly 1.0
package waveform

import "math"

// Reduce downsamples samples into exactly targetPoints values in [0,1].
// Each point is the RMS of one window of windowSize = len/targetPoints
// samples; empty windows (input shorter than targetPoints) contribute 0.
// If any window is non-silent the envelope is scaled so its maximum is
// 1.0; an all-silent input stays all zeros.
func Reduce(samples []float64, targetPoints int) ([]float64, error) {
	if targetPoints <= 0 {
		return nil, ErrInvalidTargetPoints
	}

	windowSize := len(samples) / targetPoints
	envelope := make([]float64, targetPoints)

	maxAmp := 0.0
	for i := 0; i < targetPoints; i++ {
		start := i * windowSize
		end := start + windowSize
		if end > len(samples) {
			end = len(samples)
		}
		if start >= end {
			continue // empty window, stays 0
		}

		var sum float64
		for _, s := range samples[start:end] {
			sum += s * s
		}
		rms := math.Sqrt(sum / float64(end-start))
		envelope[i] = rms
		if rms > maxAmp {
			maxAmp = rms
		}
	}

	if maxAmp > 0 {
		for i := range envelope {
			envelope[i] /= maxAmp
		}
	}
	return envelope, nil
}
