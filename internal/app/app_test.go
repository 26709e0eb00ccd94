// ABOUTME: Tests for application wiring
// ABOUTME: Drives the real decode and waveform pipeline over a fake output device
package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"

	"github.com/loopdeck/loopdeck-go/internal/config"
	"github.com/loopdeck/loopdeck-go/internal/engine"
	"github.com/loopdeck/loopdeck-go/pkg/audio"
	"github.com/loopdeck/loopdeck-go/pkg/audio/output"
)

type nullDevice struct {
	mu     sync.Mutex
	routes int
}

func (d *nullDevice) OpenRoute() (output.Route, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes++
	return &nullRoute{}, nil
}

func (d *nullDevice) SampleRate() int { return 8000 }
func (d *nullDevice) Close() error    { return nil }

type nullRoute struct{}

func (r *nullRoute) Load(*audio.Buffer) error       { return nil }
func (r *nullRoute) Start(_, _ time.Duration) error { return nil }
func (r *nullRoute) Stop()                          {}
func (r *nullRoute) SetVolume(float64)              {}
func (r *nullRoute) Close() error                   { return nil }

// writeWAV drops a real PCM file into the library directory.
func writeWAV(t *testing.T, dir, name string, rate int, seconds float64) {
	t.Helper()

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}

	frames := int(seconds * float64(rate))
	samples := make([]int, frames)
	for i := range samples {
		samples[i] = (i%100 - 50) * 300
	}

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.LibraryDir = filepath.Join(root, "recordings")
	cfg.CacheDir = filepath.Join(root, "waveforms")
	cfg.HistoryPath = filepath.Join(root, "history.json")
	cfg.Waveform.TargetPoints = 32

	if err := os.MkdirAll(cfg.LibraryDir, 0755); err != nil {
		t.Fatalf("mkdir library: %v", err)
	}
	writeWAV(t, cfg.LibraryDir, "beat.wav", 8000, 4.0)

	a, err := NewWithDevice(cfg, &nullDevice{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewWithDevice() error: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestAppPlayToggleFlow(t *testing.T) {
	a := newTestApp(t)

	recordings, err := a.Recordings()
	if err != nil {
		t.Fatalf("Recordings() error: %v", err)
	}
	if len(recordings) != 1 || recordings[0].ID != "beat.wav" {
		t.Fatalf("unexpected recordings %v", recordings)
	}

	if err := a.Toggle("beat.wav", false); err != nil {
		t.Fatalf("Toggle() error: %v", err)
	}
	if !a.IsPlaying("beat.wav") {
		t.Error("expected beat.wav playing")
	}
	st := a.Status()
	if st.State != engine.StatePlaying || st.Duration != 4*time.Second {
		t.Errorf("unexpected status %+v", st)
	}

	// Same recording, same mode: stop.
	if err := a.Toggle("beat.wav", false); err != nil {
		t.Fatalf("second Toggle() error: %v", err)
	}
	if a.IsPlaying("beat.wav") {
		t.Error("expected idle after toggle")
	}

	// The fresh start lands in play history (written asynchronously).
	deadline := time.Now().Add(2 * time.Second)
	for {
		ids := a.RecentIDs()
		if len(ids) == 1 && ids[0] == "beat.wav" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("play history never recorded, got %v", ids)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAppToggleMissingRecording(t *testing.T) {
	a := newTestApp(t)

	if err := a.Toggle("missing.wav", false); err == nil {
		t.Error("expected error for missing recording")
	}
	if st := a.Status(); st.State != engine.StateIdle {
		t.Errorf("expected idle, got %+v", st)
	}
}

func TestAppLoopUsesSavedPoints(t *testing.T) {
	a := newTestApp(t)

	want := audio.LoopPoints{Start: 1.0, End: 3.0}
	if err := a.SaveLoopPoints("beat.wav", want); err != nil {
		t.Fatalf("SaveLoopPoints() error: %v", err)
	}

	if err := a.Toggle("beat.wav", true); err != nil {
		t.Fatalf("Toggle(loop) error: %v", err)
	}
	st := a.Status()
	if !st.Loop {
		t.Fatal("expected loop mode")
	}
	if st.LoopPoints.Start != 1.0 || st.LoopPoints.End != 3.0 {
		t.Errorf("expected saved points applied, got %+v", st.LoopPoints)
	}
}

func TestAppWaveform(t *testing.T) {
	a := newTestApp(t)

	env, err := a.Waveform(context.Background(), "beat.wav")
	if err != nil {
		t.Fatalf("Waveform() error: %v", err)
	}
	if len(env) != 32 {
		t.Fatalf("expected 32 points, got %d", len(env))
	}
	max := 0.0
	for _, v := range env {
		if v < 0 || v > 1 {
			t.Fatalf("envelope value %f outside [0,1]", v)
		}
		if v > max {
			max = v
		}
	}
	if max != 1.0 {
		t.Errorf("expected normalized peak 1.0, got %f", max)
	}

	// Served from the cache on repeat.
	again, err := a.Waveform(context.Background(), "beat.wav")
	if err != nil {
		t.Fatalf("second Waveform() error: %v", err)
	}
	if len(again) != len(env) {
		t.Errorf("cache returned %d points, want %d", len(again), len(env))
	}

	if _, err := a.Waveform(context.Background(), "missing.wav"); err == nil {
		t.Error("expected error for missing recording")
	}
}

func TestAppVolumePassthrough(t *testing.T) {
	a := newTestApp(t)

	a.SetVolume(0.3)
	if v := a.Volume(); v != 0.3 {
		t.Errorf("Volume() = %f, want 0.3", v)
	}
	a.SetVolume(5)
	if v := a.Volume(); v != 1.0 {
		t.Errorf("Volume() = %f, want clamped 1.0", v)
	}
}
