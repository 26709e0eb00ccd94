// ABOUTME: Sine tone synthesis
// ABOUTME: Generates a fixed-frequency tone as a decoded Buffer
package audio

import (
	"math"
	"time"
)

// Sine generates a sine tone at the given frequency, duplicated across
// channels, at 50% amplitude.
func Sine(freq float64, d time.Duration, sampleRate, channels int) *Buffer {
	frames := int(d.Seconds() * float64(sampleRate))
	data := make([]float64, frames*channels)
	for f := 0; f < frames; f++ {
		t := float64(f) / float64(sampleRate)
		s := math.Sin(2*math.Pi*freq*t) * 0.5
		for c := 0; c < channels; c++ {
			data[f*channels+c] = s
		}
	}
	return &Buffer{Data: data, Channels: channels, SampleRate: sampleRate}
}
