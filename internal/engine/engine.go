// ABOUTME: Single-session playback engine with loop-boundary scheduling
// ABOUTME: Owns decode, output routing, position tracking and exclusive teardown
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/loopdeck/loopdeck-go/pkg/audio"
	"github.com/loopdeck/loopdeck-go/pkg/audio/output"
)

// Playback states reported by Status.
const (
	StateIdle    = "idle"
	StatePlaying = "playing"
)

// Decoder turns compressed audio bytes into a PCM buffer.
type Decoder interface {
	Decode(data []byte) (*audio.Buffer, error)
}

// History receives a notification for each playback that starts. Record
// runs on its own goroutine; failures are logged, never surfaced to the
// caller of Play.
type History interface {
	Record(recordingID string, playedAt time.Time) error
}

// Config holds engine dependencies and tuning.
type Config struct {
	// Device provides output routes. Required. The engine does not
	// close the device; its owner does.
	Device output.Device

	// Decoder decodes audio blobs handed to Play. Required.
	Decoder Decoder

	// History is notified of playback starts. Optional.
	History History

	// Ticks drives position tracking (default: 10ms ticker).
	Ticks TickSource

	// Clock reports the current time (default: time.Now).
	Clock func() time.Time

	// FadeIn ramps gain linearly from silence whenever a source
	// starts, including loop restarts. Zero disables the ramp.
	FadeIn time.Duration

	// Volume is the initial output volume in [0,1] (default: 1).
	Volume float64

	// Logger for playback events.
	Logger zerolog.Logger
}

// Engine plays one recording at a time. Play, Stop and the query
// methods are safe for concurrent use; commands are serialized so at
// most one session is ever alive.
type Engine struct {
	device  output.Device
	decoder Decoder
	history History
	ticks   TickSource
	now     func() time.Time
	fadeIn  time.Duration
	log     zerolog.Logger

	mu      sync.Mutex
	volume  float64
	gen     uint64
	session *session
	closed  bool
}

// session is the single live playback instance. It exists only while
// the engine is playing and is mutated only under the engine lock.
type session struct {
	token       string
	recordingID string
	loop        bool
	points      audio.LoopPoints
	duration    time.Duration
	route       output.Route
	ticker      TickHandle

	// position = pauseOffset + (now - clockOrigin)
	clockOrigin time.Time
	pauseOffset time.Duration
}

func (s *session) position(now time.Time) time.Duration {
	return s.pauseOffset + now.Sub(s.clockOrigin)
}

// New creates an engine from cfg.
func New(cfg Config) (*Engine, error) {
	if cfg.Device == nil {
		return nil, errors.New("engine: device is required")
	}
	if cfg.Decoder == nil {
		return nil, errors.New("engine: decoder is required")
	}
	if cfg.Ticks == nil {
		cfg.Ticks = &TickerSource{}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Volume == 0 {
		cfg.Volume = 1.0
	}

	return &Engine{
		device:  cfg.Device,
		decoder: cfg.Decoder,
		history: cfg.History,
		ticks:   cfg.Ticks,
		now:     cfg.Clock,
		fadeIn:  cfg.FadeIn,
		log:     cfg.Logger,
		volume:  clampVolume(cfg.Volume),
	}, nil
}

// Play decodes data and starts playing it. The call is interpreted by
// what is already playing:
//
//   - same recording, same loop flag: stop it, start nothing
//   - anything else active: tear it down, then start the new recording
//   - idle: just start
//
// When loop is true with points, playback begins at points.Start and
// restarts there whenever the position reaches points.End. Points are
// clamped to the decoded duration, never rejected. With loop true and
// nil points the whole recording repeats. A Stop or newer Play arriving
// while data is still decoding wins; the decoded candidate is discarded
// and Play returns nil.
func (e *Engine) Play(recordingID string, data []byte, loop bool, points *audio.LoopPoints) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.gen++
	gen := e.gen

	if s := e.session; s != nil {
		if s.recordingID == recordingID && s.loop == loop {
			e.teardownLocked()
			e.mu.Unlock()
			return nil
		}
		// Different target: the old session goes away before decode
		// begins, so a decode failure below leaves the engine idle.
		e.teardownLocked()
	}
	e.mu.Unlock()

	// Decode outside the lock so Stop and queries stay responsive
	// while large blobs are processed.
	buf, err := e.decoder.Decode(data)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.gen != gen {
		e.log.Debug().Str("recording_id", recordingID).Msg("decode superseded, discarding")
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", recordingID, err)
	}

	return e.startLocked(recordingID, buf, loop, points)
}

// startLocked builds and installs a new session. Callers hold the lock
// and have verified there is no live session.
func (e *Engine) startLocked(recordingID string, buf *audio.Buffer, loop bool, points *audio.LoopPoints) error {
	var pts audio.LoopPoints
	var offset time.Duration
	if loop {
		if points != nil {
			pts = points.Clamp(buf.Seconds())
			offset = pts.StartDuration()
		} else {
			pts = audio.LoopPoints{Start: 0, End: buf.Seconds()}
		}
	}

	route, err := e.device.OpenRoute()
	if err != nil {
		return fmt.Errorf("open output route: %w", err)
	}
	if err := route.Load(buf); err != nil {
		route.Close()
		return fmt.Errorf("load %s: %w", recordingID, err)
	}
	route.SetVolume(e.volume)
	if err := route.Start(offset, e.fadeIn); err != nil {
		route.Close()
		return fmt.Errorf("start %s: %w", recordingID, err)
	}

	now := e.now()
	s := &session{
		token:       uuid.NewString(),
		recordingID: recordingID,
		loop:        loop,
		points:      pts,
		duration:    buf.Duration(),
		route:       route,
		clockOrigin: now,
		pauseOffset: offset,
	}
	token := s.token
	s.ticker = e.ticks.Start(func(tickNow time.Time) {
		e.onTick(token, tickNow)
	})
	e.session = s

	e.log.Info().
		Str("recording_id", recordingID).
		Bool("loop", loop).
		Dur("duration", s.duration).
		Msg("playback started")

	if e.history != nil {
		go func(h History, id string, at time.Time, log zerolog.Logger) {
			if err := h.Record(id, at); err != nil {
				log.Debug().Err(err).Str("recording_id", id).Msg("record play history")
			}
		}(e.history, recordingID, now, e.log)
	}
	return nil
}

// onTick advances position tracking for the session identified by
// token. Ticks that outlive their session are dropped here.
func (e *Engine) onTick(token string, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if e.closed || s == nil || s.token != token {
		return
	}

	pos := s.position(now)
	if s.loop {
		if pos >= s.points.EndDuration() {
			e.restartLocked(s, now)
		}
		return
	}
	if pos >= s.duration {
		e.log.Debug().Str("recording_id", s.recordingID).Msg("playback finished")
		e.teardownLocked()
	}
}

// restartLocked rewinds a looping session to its loop start within the
// same tick that observed the boundary.
func (e *Engine) restartLocked(s *session, now time.Time) {
	if err := s.route.Start(s.points.StartDuration(), e.fadeIn); err != nil {
		e.log.Error().Err(err).Str("recording_id", s.recordingID).Msg("loop restart failed")
		e.teardownLocked()
		return
	}
	s.pauseOffset = s.points.StartDuration()
	s.clockOrigin = now
}

// Stop tears down the active session if any. It is idempotent, never
// fails, and also cancels any Play whose decode is still in flight.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.gen++
	e.teardownLocked()
}

// teardownLocked releases everything the session owns. Runs on every
// exit path: stop, toggle, switch, natural end, restart failure, close.
func (e *Engine) teardownLocked() {
	s := e.session
	if s == nil {
		return
	}
	e.session = nil

	if s.ticker != nil {
		s.ticker.Stop()
	}
	s.route.Stop()
	if err := s.route.Close(); err != nil {
		e.log.Debug().Err(err).Str("recording_id", s.recordingID).Msg("close output route")
	}

	e.log.Info().Str("recording_id", s.recordingID).Msg("playback stopped")
}

// IsPlaying reports whether recordingID is the active session,
// regardless of loop mode.
func (e *Engine) IsPlaying(recordingID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil && e.session.recordingID == recordingID
}

// IsPlayingLoop reports whether recordingID is active with exactly the
// given loop flag.
func (e *Engine) IsPlayingLoop(recordingID string, loop bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil &&
		e.session.recordingID == recordingID &&
		e.session.loop == loop
}

// Status describes the engine's current playback.
type Status struct {
	State       string
	RecordingID string
	Loop        bool
	LoopPoints  audio.LoopPoints
	Position    time.Duration
	Duration    time.Duration
	Volume      float64
}

// Status returns a snapshot of the current session, or an idle status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s == nil {
		return Status{State: StateIdle, Volume: e.volume}
	}
	return Status{
		State:       StatePlaying,
		RecordingID: s.recordingID,
		Loop:        s.loop,
		LoopPoints:  s.points,
		Position:    s.position(e.now()),
		Duration:    s.duration,
		Volume:      e.volume,
	}
}

// SetVolume adjusts output volume, clamped to [0,1]. It applies to the
// live session immediately and persists for future sessions.
func (e *Engine) SetVolume(v float64) {
	v = clampVolume(v)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = v
	if e.session != nil {
		e.session.route.SetVolume(v)
	}
}

// Volume returns the current output volume.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Close tears down any active session and rejects further commands.
// The output device stays open; its owner closes it.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.gen++
	e.teardownLocked()
	return nil
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
