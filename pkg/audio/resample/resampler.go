// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Converts whole decoded buffers between rates using linear interpolation
package resample

import (
	"github.com/loopdeck/loopdeck-go/pkg/audio"
)

// Buffer converts a decoded buffer to targetRate using linear
// interpolation. The input is returned unchanged when it is already at
// the target rate or is empty.
func Buffer(in *audio.Buffer, targetRate int) *audio.Buffer {
	if in.SampleRate == targetRate || targetRate <= 0 || in.FrameCount() == 0 {
		return in
	}

	channels := in.Channels
	inFrames := in.FrameCount()
	outFrames := int(int64(inFrames) * int64(targetRate) / int64(in.SampleRate))
	if outFrames == 0 {
		return &audio.Buffer{Channels: channels, SampleRate: targetRate}
	}

	ratio := float64(in.SampleRate) / float64(targetRate)
	out := make([]float64, outFrames*channels)

	for f := 0; f < outFrames; f++ {
		pos := float64(f) * ratio
		idx := int(pos)
		frac := pos - float64(idx)

		for ch := 0; ch < channels; ch++ {
			s0 := in.Data[idx*channels+ch]
			s1 := s0
			if idx+1 < inFrames {
				s1 = in.Data[(idx+1)*channels+ch]
			}
			out[f*channels+ch] = s0*(1.0-frac) + s1*frac
		}
	}

	return &audio.Buffer{Data: out, Channels: channels, SampleRate: targetRate}
}

// Frames returns how many output frames a buffer of inFrames at inRate
// produces at targetRate.
func Frames(inFrames, inRate, targetRate int) int {
	if inRate <= 0 || targetRate <= 0 {
		return 0
	}
	return int(int64(inFrames) * int64(targetRate) / int64(inRate))
}
