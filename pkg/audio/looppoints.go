// ABOUTME: Loop point pair and clamping rules
// ABOUTME: Out-of-range or too-narrow loop edits are clamped, never rejected
package audio

import "time"

// MinLoopDuration is the narrowest allowed loop window.
const MinLoopDuration = 100 * time.Millisecond

// LoopPoints is a start/end pair in seconds defining the seamless-repeat
// window of a recording.
type LoopPoints struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// StartDuration returns the start bound as a time.Duration.
func (p LoopPoints) StartDuration() time.Duration {
	return time.Duration(p.Start * float64(time.Second))
}

// EndDuration returns the end bound as a time.Duration.
func (p LoopPoints) EndDuration() time.Duration {
	return time.Duration(p.End * float64(time.Second))
}

// Clamp forces p into the valid range for a recording of the given length
// in seconds: both bounds inside [0, duration] and End-Start covering at
// least MinLoopDuration. A recording shorter than MinLoopDuration
// collapses to the whole buffer.
func (p LoopPoints) Clamp(duration float64) LoopPoints {
	min := MinLoopDuration.Seconds()
	if duration <= min {
		return LoopPoints{Start: 0, End: duration}
	}

	start := p.Start
	if start < 0 {
		start = 0
	}
	if start > duration-min {
		start = duration - min
	}

	end := p.End
	if end < start+min {
		end = start + min
	}
	if end > duration {
		end = duration
	}

	return LoopPoints{Start: start, End: end}
}
