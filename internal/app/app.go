// ABOUTME: Application wiring for the loopdeck player
// ABOUTME: Builds the engine, library, waveform service and history from one config
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/loopdeck/loopdeck-go/internal/config"
	"github.com/loopdeck/loopdeck-go/internal/engine"
	"github.com/loopdeck/loopdeck-go/internal/history"
	"github.com/loopdeck/loopdeck-go/internal/library"
	"github.com/loopdeck/loopdeck-go/internal/store"
	"github.com/loopdeck/loopdeck-go/internal/waveform"
	"github.com/loopdeck/loopdeck-go/pkg/audio"
	"github.com/loopdeck/loopdeck-go/pkg/audio/decode"
	"github.com/loopdeck/loopdeck-go/pkg/audio/output"
)

// App owns every component of a running player and exposes the
// operations the UI and facade drive.
type App struct {
	cfg      config.Config
	log      zerolog.Logger
	device   output.Device
	ownsDev  bool
	registry *decode.Registry
	engine   *engine.Engine
	library  *library.Library
	waveform *waveform.Service
	history  *history.Store
}

// New builds an app on the system audio device.
func New(cfg config.Config, log zerolog.Logger) (*App, error) {
	device, err := output.NewOtoDevice(cfg.Audio.SampleRate, cfg.Audio.Channels, log)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	a, err := NewWithDevice(cfg, device, log)
	if err != nil {
		device.Close()
		return nil, err
	}
	a.ownsDev = true
	return a, nil
}

// NewWithDevice builds an app on a caller-provided device. The caller
// keeps ownership of the device and closes it after the app.
func NewWithDevice(cfg config.Config, device output.Device, log zerolog.Logger) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	lib, err := library.New(cfg.LibraryDir, log)
	if err != nil {
		return nil, err
	}

	hist, err := history.NewStore(cfg.HistoryPath, log)
	if err != nil {
		return nil, err
	}

	var cache waveform.Cache
	if cfg.CacheDir != "" {
		fc, err := store.NewFileCache(cfg.CacheDir, log)
		if err != nil {
			return nil, err
		}
		cache = fc
	} else {
		cache = store.NewMemoryCache()
	}

	registry := decode.NewRegistry()

	eng, err := engine.New(engine.Config{
		Device:  device,
		Decoder: registry,
		History: hist,
		Ticks:   &engine.TickerSource{Interval: time.Duration(cfg.Audio.TickIntervalMs) * time.Millisecond},
		FadeIn:  time.Duration(cfg.Audio.FadeInMs) * time.Millisecond,
		Volume:  cfg.Audio.Volume,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		log:      log,
		device:   device,
		registry: registry,
		engine:   eng,
		library:  lib,
		waveform: waveform.NewService(waveform.ServiceConfig{
			Cache:        cache,
			TargetPoints: cfg.Waveform.TargetPoints,
			Logger:       log,
		}),
		history: hist,
	}, nil
}

// Recordings rescans the library.
func (a *App) Recordings() ([]library.Recording, error) {
	return a.library.Scan()
}

// Toggle plays recordingID, or stops it when it is already playing in
// the same mode. Loop playback uses the recording's saved loop points
// when a sidecar exists.
func (a *App) Toggle(recordingID string, loop bool) error {
	data, err := a.library.Load(recordingID)
	if err != nil {
		return err
	}

	var pts *audio.LoopPoints
	if loop {
		pts, err = a.library.LoopPoints(recordingID)
		if err != nil {
			a.log.Warn().Err(err).Str("recording_id", recordingID).Msg("ignoring unreadable loop points")
			pts = nil
		}
	}

	return a.engine.Play(recordingID, data, loop, pts)
}

// Stop tears down the active session if any.
func (a *App) Stop() {
	a.engine.Stop()
}

// Status reports current playback.
func (a *App) Status() engine.Status {
	return a.engine.Status()
}

// IsPlaying reports whether recordingID is the active session.
func (a *App) IsPlaying(recordingID string) bool {
	return a.engine.IsPlaying(recordingID)
}

// SetVolume adjusts output volume in [0,1].
func (a *App) SetVolume(v float64) {
	a.engine.SetVolume(v)
}

// Volume reports the current output volume.
func (a *App) Volume() float64 {
	return a.engine.Volume()
}

// Waveform returns the display envelope for recordingID, decoding and
// reducing on first request and serving the cache afterwards.
func (a *App) Waveform(ctx context.Context, recordingID string) ([]float64, error) {
	return a.waveform.Envelope(ctx, recordingID, func() ([]float64, error) {
		data, err := a.library.Load(recordingID)
		if err != nil {
			return nil, err
		}
		buf, err := a.registry.Decode(data)
		if err != nil {
			return nil, err
		}
		return buf.Channel(0), nil
	})
}

// LoopPoints reads the saved loop points for recordingID, if any.
func (a *App) LoopPoints(recordingID string) (*audio.LoopPoints, error) {
	return a.library.LoopPoints(recordingID)
}

// SaveLoopPoints persists edited loop points for recordingID.
func (a *App) SaveLoopPoints(recordingID string, pts audio.LoopPoints) error {
	return a.library.SaveLoopPoints(recordingID, pts)
}

// RecentIDs lists recordings played in the trailing week, most recent
// first.
func (a *App) RecentIDs() []string {
	return a.history.RecentIDs()
}

// Close releases the engine and waveform worker, and the device when
// this app created it.
func (a *App) Close() error {
	a.engine.Close()
	a.waveform.Close()
	if a.ownsDev {
		if err := a.device.Close(); err != nil {
			return fmt.Errorf("close audio device: %w", err)
		}
	}
	return nil
}
