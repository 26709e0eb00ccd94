// ABOUTME: High-level Player API for local loop playback
// ABOUTME: Wraps the engine, library, waveform and history wiring behind one type

package loopdeck

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/loopdeck/loopdeck-go/internal/app"
	"github.com/loopdeck/loopdeck-go/internal/config"
	"github.com/loopdeck/loopdeck-go/pkg/audio"
	"github.com/loopdeck/loopdeck-go/pkg/audio/output"
)

// Playback states reported in State.State.
const (
	StateIdle    = "idle"
	StatePlaying = "playing"
)

const statePollInterval = 100 * time.Millisecond

// Config holds player configuration.
type Config struct {
	// LibraryDir is the directory scanned for recordings (default: "recordings")
	LibraryDir string

	// CacheDir persists waveform envelopes between runs; empty keeps them in memory
	CacheDir string

	// HistoryPath persists play history between runs; empty keeps it in memory
	HistoryPath string

	// SampleRate is the output sample rate in Hz (default: 48000)
	SampleRate int

	// Channels is the output channel count (default: 2)
	Channels int

	// Volume is the initial volume (0-100, default: 100)
	Volume int

	// FadeInMs ramps gain over this many milliseconds on every start and
	// loop restart (default: 0, no fade)
	FadeInMs int

	// WaveformPoints is the envelope resolution (default: 200)
	WaveformPoints int

	// PrefetchWaveforms computes envelopes for the whole library in the
	// background after startup so first browse renders instantly
	PrefetchWaveforms bool

	// OnStateChange is called when playback state changes
	OnStateChange func(State)

	// OnError is called when background work fails
	OnError func(error)

	// Logger receives structured logs. The zero value discards them.
	Logger zerolog.Logger
}

// State describes the current player state.
type State struct {
	State       string // "idle" or "playing"
	RecordingID string
	Loop        bool
	LoopStart   float64 // seconds
	LoopEnd     float64 // seconds
	Position    time.Duration
	Duration    time.Duration
	Volume      int // 0-100
}

// Recording describes one playable file in the library.
type Recording struct {
	ID     string
	Name   string
	Format string
}

// Player provides high-level local loop playback.
type Player struct {
	config Config
	app    *app.App

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPlayer creates a player on the system audio device.
func NewPlayer(cfg Config) (*Player, error) {
	cfg = withDefaults(cfg)

	a, err := app.New(cfg.runtime(), cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("build player: %w", err)
	}
	return newPlayer(cfg, a), nil
}

// NewPlayerWithDevice creates a player on a caller-provided output device.
// The caller keeps ownership of the device and closes it after the player.
func NewPlayerWithDevice(cfg Config, device output.Device) (*Player, error) {
	cfg = withDefaults(cfg)

	a, err := app.NewWithDevice(cfg.runtime(), device, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("build player: %w", err)
	}
	return newPlayer(cfg, a), nil
}

func newPlayer(cfg Config, a *app.App) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		config: cfg,
		app:    a,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if cfg.OnStateChange != nil {
		go p.pollLoop()
	} else {
		close(p.done)
	}

	if cfg.PrefetchWaveforms {
		go func() {
			if err := p.PrefetchWaveforms(ctx); err != nil && ctx.Err() == nil {
				p.notifyError(err)
			}
		}()
	}

	return p
}

func withDefaults(cfg Config) Config {
	if cfg.Volume == 0 {
		cfg.Volume = 100
	}
	if cfg.Volume < 0 {
		cfg.Volume = 0
	}
	if cfg.Volume > 100 {
		cfg.Volume = 100
	}
	return cfg
}

// runtime maps the public config onto the internal one, keeping internal
// defaults for anything left zero.
func (c Config) runtime() config.Config {
	rc := config.Default()
	if c.LibraryDir != "" {
		rc.LibraryDir = c.LibraryDir
	}
	rc.CacheDir = c.CacheDir
	rc.HistoryPath = c.HistoryPath
	if c.SampleRate != 0 {
		rc.Audio.SampleRate = c.SampleRate
	}
	if c.Channels != 0 {
		rc.Audio.Channels = c.Channels
	}
	rc.Audio.Volume = float64(c.Volume) / 100
	if c.FadeInMs > 0 {
		rc.Audio.FadeInMs = c.FadeInMs
	}
	if c.WaveformPoints != 0 {
		rc.Waveform.TargetPoints = c.WaveformPoints
	}
	return rc
}

// Recordings scans the library.
func (p *Player) Recordings() ([]Recording, error) {
	recs, err := p.app.Recordings()
	if err != nil {
		return nil, err
	}
	out := make([]Recording, len(recs))
	for i, r := range recs {
		out[i] = Recording{ID: r.ID, Name: r.Name, Format: r.Format}
	}
	return out, nil
}

// Play starts recordingID from the top. Calling it again while the same
// recording plays straight through stops it instead.
func (p *Player) Play(recordingID string) error {
	return p.app.Toggle(recordingID, false)
}

// PlayLoop starts recordingID looping over its saved loop points, or over
// the whole recording when none are saved. Calling it again while the same
// recording loops stops it instead.
func (p *Player) PlayLoop(recordingID string) error {
	return p.app.Toggle(recordingID, true)
}

// Stop tears down the active session, if any.
func (p *Player) Stop() {
	p.app.Stop()
}

// IsPlaying reports whether recordingID is the active session.
func (p *Player) IsPlaying(recordingID string) bool {
	return p.app.IsPlaying(recordingID)
}

// Status returns the current player state.
func (p *Player) Status() State {
	st := p.app.Status()
	s := State{
		State:  st.State,
		Volume: int(math.Round(st.Volume * 100)),
	}
	if st.State == StatePlaying {
		s.RecordingID = st.RecordingID
		s.Loop = st.Loop
		s.LoopStart = st.LoopPoints.Start
		s.LoopEnd = st.LoopPoints.End
		s.Position = st.Position
		s.Duration = st.Duration
	}
	return s
}

// SetVolume sets the output volume (0-100).
func (p *Player) SetVolume(volume int) error {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	p.app.SetVolume(float64(volume) / 100)
	p.notifyStateChange(p.Status())
	return nil
}

// Volume returns the output volume (0-100).
func (p *Player) Volume() int {
	return int(math.Round(p.app.Volume() * 100))
}

// Waveform returns the display envelope for recordingID: values normalized
// to [0,1] at the configured resolution. The first request decodes and
// reduces the recording; later ones are served from the cache.
func (p *Player) Waveform(ctx context.Context, recordingID string) ([]float64, error) {
	return p.app.Waveform(ctx, recordingID)
}

// PrefetchWaveforms computes and caches envelopes for every recording in
// the library.
func (p *Player) PrefetchWaveforms(ctx context.Context) error {
	recs, err := p.app.Recordings()
	if err != nil {
		return fmt.Errorf("prefetch waveforms: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	for _, rec := range recs {
		g.Go(func() error {
			if _, err := p.app.Waveform(ctx, rec.ID); err != nil {
				return fmt.Errorf("waveform %s: %w", rec.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// LoopPoints reads the saved loop points for recordingID. It returns nil
// when none are saved.
func (p *Player) LoopPoints(recordingID string) (*audio.LoopPoints, error) {
	return p.app.LoopPoints(recordingID)
}

// SaveLoopPoints persists loop points for recordingID. Points are clamped
// against the recording at playback time, not here.
func (p *Player) SaveLoopPoints(recordingID string, pts audio.LoopPoints) error {
	return p.app.SaveLoopPoints(recordingID, pts)
}

// RecentlyPlayed lists recordings started in the trailing week, most
// recent first.
func (p *Player) RecentlyPlayed() []string {
	return p.app.RecentIDs()
}

// Close stops playback and releases all resources.
func (p *Player) Close() error {
	p.cancel()
	<-p.done

	if err := p.app.Close(); err != nil {
		return err
	}
	p.notifyStateChange(State{State: StateIdle, Volume: p.Volume()})
	return nil
}

// pollLoop watches for playback transitions the engine makes on its own,
// like a recording reaching its end, and surfaces them through the
// OnStateChange callback.
func (p *Player) pollLoop() {
	defer close(p.done)

	ticker := time.NewTicker(statePollInterval)
	defer ticker.Stop()

	last := p.Status()
	for {
		select {
		case <-ticker.C:
			cur := p.Status()
			if cur.State != last.State || cur.RecordingID != last.RecordingID || cur.Loop != last.Loop {
				p.notifyStateChange(cur)
			}
			last = cur

		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Player) notifyStateChange(s State) {
	if p.config.OnStateChange != nil {
		p.config.OnStateChange(s)
	}
}

func (p *Player) notifyError(err error) {
	if p.config.OnError != nil {
		p.config.OnError(err)
		return
	}
	p.config.Logger.Error().Err(err).Msg("background task failed")
}
