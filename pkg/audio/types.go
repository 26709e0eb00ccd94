// ABOUTME: Core audio type definitions
// ABOUTME: Defines the decoded PCM Buffer and sample conversion helpers
package audio

import "time"

// Buffer represents decoded PCM audio as interleaved float64 samples
// in [-1, 1]. Frame f, channel c lives at Data[f*Channels+c].
type Buffer struct {
	Data       []float64
	Channels   int
	SampleRate int
}

// FrameCount returns the number of sample frames in the buffer.
func (b *Buffer) FrameCount() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}

// Seconds returns the playback length as frameCount/sampleRate.
func (b *Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.FrameCount()) / float64(b.SampleRate)
}

// Channel extracts a single channel as a contiguous slice. Channel 0 is
// the input to waveform reduction. Returns nil for an out-of-range index.
func (b *Buffer) Channel(ch int) []float64 {
	if ch < 0 || ch >= b.Channels {
		return nil
	}
	frames := b.FrameCount()
	out := make([]float64, frames)
	for f := 0; f < frames; f++ {
		out[f] = b.Data[f*b.Channels+ch]
	}
	return out
}

// SampleToInt16 converts a float sample in [-1, 1] to 16-bit PCM,
// clamping out-of-range values.
func SampleToInt16(s float64) int16 {
	v := s * 32767.0
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// SampleFromInt16 converts a 16-bit PCM sample to float in [-1, 1].
func SampleFromInt16(s int16) float64 {
	return float64(s) / 32768.0
}
