// ABOUTME: Tests for RMS envelope reduction
// ABOUTME: Covers output length, normalization, and degenerate inputs
package waveform

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/loopdeck/loopdeck-go/pkg/audio"
)

func TestReduceOutputLength(t *testing.T) {
	lengths := []int{0, 1, 3, 7, 8, 100, 1000, 44100}
	for _, n := range lengths {
		samples := make([]float64, n)
		for i := range samples {
			samples[i] = float64(i%10) / 10
		}

		envelope, err := Reduce(samples, 8)
		if err != nil {
			t.Fatalf("Reduce(len=%d) error: %v", n, err)
		}
		if len(envelope) != 8 {
			t.Errorf("Reduce(len=%d) returned %d points, want 8", n, len(envelope))
		}
	}
}

func TestReduceKnownValues(t *testing.T) {
	// Window RMS values are 1 and 2; normalized by the max.
	envelope, err := Reduce([]float64{1, 1, 2, 2}, 2)
	if err != nil {
		t.Fatalf("Reduce() error: %v", err)
	}

	if math.Abs(envelope[0]-0.5) > 1e-12 {
		t.Errorf("envelope[0] = %f, want 0.5", envelope[0])
	}
	if math.Abs(envelope[1]-1.0) > 1e-12 {
		t.Errorf("envelope[1] = %f, want 1.0", envelope[1])
	}
}

func TestReduceNormalizesPeakToOne(t *testing.T) {
	// A quiet tone still normalizes to a full-scale envelope.
	samples := audio.Sine(440, time.Second, 8000, 1).Channel(0)

	envelope, err := Reduce(samples, 50)
	if err != nil {
		t.Fatalf("Reduce() error: %v", err)
	}

	max := 0.0
	for _, v := range envelope {
		if v < 0 || v > 1 {
			t.Fatalf("envelope value %f outside [0,1]", v)
		}
		if v > max {
			max = v
		}
	}
	if math.Abs(max-1.0) > 1e-12 {
		t.Errorf("envelope max = %f, want exactly 1.0", max)
	}
}

func TestReduceSilenceStaysZero(t *testing.T) {
	envelope, err := Reduce(make([]float64, 500), 10)
	if err != nil {
		t.Fatalf("Reduce() error: %v", err)
	}
	for i, v := range envelope {
		if v != 0 {
			t.Errorf("envelope[%d] = %f, want 0 for silent input", i, v)
		}
	}
}

func TestReduceEmptyInput(t *testing.T) {
	envelope, err := Reduce(nil, 5)
	if err != nil {
		t.Fatalf("Reduce() error: %v", err)
	}
	if len(envelope) != 5 {
		t.Fatalf("expected 5 points, got %d", len(envelope))
	}
	for i, v := range envelope {
		if v != 0 {
			t.Errorf("envelope[%d] = %f, want 0", i, v)
		}
	}
}

func TestReduceInputShorterThanTarget(t *testing.T) {
	// Window size floors to zero: every window is empty and reads 0,
	// even though the input itself is loud.
	envelope, err := Reduce([]float64{1, 2, 3}, 5)
	if err != nil {
		t.Fatalf("Reduce() error: %v", err)
	}
	if len(envelope) != 5 {
		t.Fatalf("expected 5 points, got %d", len(envelope))
	}
	for i, v := range envelope {
		if v != 0 {
			t.Errorf("envelope[%d] = %f, want 0", i, v)
		}
	}
}

func TestReduceIgnoresFlooredTail(t *testing.T) {
	// len 10, target 3: windows cover samples [0,9); the spike at
	// index 9 falls outside every window.
	samples := make([]float64, 10)
	samples[9] = 100

	envelope, err := Reduce(samples, 3)
	if err != nil {
		t.Fatalf("Reduce() error: %v", err)
	}
	for i, v := range envelope {
		if v != 0 {
			t.Errorf("envelope[%d] = %f, want 0 (tail must be ignored)", i, v)
		}
	}
}

func TestReduceUsesMagnitudeNotSign(t *testing.T) {
	envelope, err := Reduce([]float64{-1, -1, -1, -1}, 2)
	if err != nil {
		t.Fatalf("Reduce() error: %v", err)
	}
	for i, v := range envelope {
		if math.Abs(v-1.0) > 1e-12 {
			t.Errorf("envelope[%d] = %f, want 1.0", i, v)
		}
	}
}

func TestReduceRejectsInvalidTargetPoints(t *testing.T) {
	for _, target := range []int{0, -1} {
		if _, err := Reduce([]float64{1, 2}, target); !errors.Is(err, ErrInvalidTargetPoints) {
			t.Errorf("Reduce(target=%d) error = %v, want ErrInvalidTargetPoints", target, err)
		}
	}
}
