// ABOUTME: Oto-based audio output implementation
// ABOUTME: Feeds oto players from decoded buffers with offset, fade-in and volume control
package output

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog"

	"github.com/loopdeck/loopdeck-go/pkg/audio"
	"github.com/loopdeck/loopdeck-go/pkg/audio/resample"
)

// OtoDevice drives the system audio backend through oto. oto allows one
// context per process, so a single device instance is shared for the
// process lifetime; Close suspends it rather than destroying it.
type OtoDevice struct {
	mu         sync.Mutex
	ctx        *oto.Context
	sampleRate int
	channels   int
	log        zerolog.Logger
	closed     bool
}

// NewOtoDevice initializes the system audio output at a fixed format.
func NewOtoDevice(sampleRate, channels int, log zerolog.Logger) (*OtoDevice, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("create oto context: %w", err)
	}
	<-readyChan

	log.Info().
		Int("sample_rate", sampleRate).
		Int("channels", channels).
		Msg("audio device ready")

	return &OtoDevice{
		ctx:        ctx,
		sampleRate: sampleRate,
		channels:   channels,
		log:        log,
	}, nil
}

// SampleRate returns the device's fixed output rate.
func (d *OtoDevice) SampleRate() int { return d.sampleRate }

// OpenRoute creates a new playback route on this device.
func (d *OtoDevice) OpenRoute() (Route, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDeviceClosed
	}
	return &otoRoute{dev: d, volume: 1.0}, nil
}

// Close suspends the device. Routes opened earlier become unusable.
func (d *OtoDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if err := d.ctx.Suspend(); err != nil {
		return fmt.Errorf("suspend oto context: %w", err)
	}
	return nil
}

// otoRoute owns at most one oto player at a time. Starting a new source
// closes the previous player first.
type otoRoute struct {
	mu     sync.Mutex
	dev    *OtoDevice
	buf    *audio.Buffer // adapted to device format
	player *oto.Player
	volume float64
	closed bool
}

func (r *otoRoute) Load(buf *audio.Buffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRouteClosed
	}

	adapted := resample.Buffer(buf, r.dev.sampleRate)
	adapted = adaptChannels(adapted, r.dev.channels)
	if adapted.FrameCount() == 0 {
		return errors.New("buffer adapts to zero frames")
	}
	r.buf = adapted
	return nil
}

func (r *otoRoute) Start(offset, fadeIn time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRouteClosed
	}
	if r.buf == nil {
		return errors.New("no buffer loaded")
	}

	if r.player != nil {
		if err := r.player.Close(); err != nil {
			r.dev.log.Debug().Err(err).Msg("close previous source")
		}
		r.player = nil
	}

	startFrame := int(offset.Seconds() * float64(r.buf.SampleRate))
	if startFrame < 0 {
		startFrame = 0
	}
	if startFrame > r.buf.FrameCount() {
		startFrame = r.buf.FrameCount()
	}
	fadeFrames := int(fadeIn.Seconds() * float64(r.buf.SampleRate))

	reader := &pcmReader{
		buf:       r.buf,
		pos:       startFrame,
		fadeLeft:  fadeFrames,
		fadeTotal: fadeFrames,
	}

	p := r.dev.ctx.NewPlayer(reader)
	p.SetVolume(r.volume)
	p.Play()
	r.player = p
	return nil
}

func (r *otoRoute) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *otoRoute) stopLocked() {
	if r.player == nil {
		return
	}
	if err := r.player.Close(); err != nil {
		r.dev.log.Debug().Err(err).Msg("close source")
	}
	r.player = nil
}

func (r *otoRoute) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.volume = v
	if r.player != nil {
		r.player.SetVolume(v)
	}
}

func (r *otoRoute) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.stopLocked()
	r.buf = nil
	r.closed = true
	return nil
}

// pcmReader feeds int16 little-endian interleaved PCM from a float64
// buffer, starting at a frame offset, with an optional linear fade-in.
type pcmReader struct {
	buf       *audio.Buffer
	pos       int // next frame
	fadeLeft  int // frames remaining in the fade ramp
	fadeTotal int
}

func (r *pcmReader) Read(p []byte) (int, error) {
	channels := r.buf.Channels
	frames := r.buf.FrameCount()
	if r.pos >= frames {
		return 0, io.EOF
	}

	frameBytes := 2 * channels
	maxFrames := len(p) / frameBytes
	n := 0
	for f := 0; f < maxFrames && r.pos < frames; f++ {
		gain := 1.0
		if r.fadeLeft > 0 {
			gain = float64(r.fadeTotal-r.fadeLeft) / float64(r.fadeTotal)
			r.fadeLeft--
		}
		for c := 0; c < channels; c++ {
			s := r.buf.Data[r.pos*channels+c] * gain
			v := uint16(audio.SampleToInt16(s))
			p[n] = byte(v)
			p[n+1] = byte(v >> 8)
			n += 2
		}
		r.pos++
	}
	return n, nil
}

// adaptChannels converts a buffer's channel layout to the device layout:
// mono duplicates into every output channel, stereo downmixes to mono by
// averaging, anything wider drops the extra channels.
func adaptChannels(in *audio.Buffer, channels int) *audio.Buffer {
	if in.Channels == channels || in.Channels <= 0 || channels <= 0 {
		return in
	}

	frames := in.FrameCount()
	out := make([]float64, frames*channels)

	switch {
	case in.Channels == 1:
		for f := 0; f < frames; f++ {
			s := in.Data[f]
			for c := 0; c < channels; c++ {
				out[f*channels+c] = s
			}
		}
	case channels == 1:
		for f := 0; f < frames; f++ {
			var sum float64
			for c := 0; c < in.Channels; c++ {
				sum += in.Data[f*in.Channels+c]
			}
			out[f] = sum / float64(in.Channels)
		}
	default:
		for f := 0; f < frames; f++ {
			for c := 0; c < channels; c++ {
				src := c
				if src >= in.Channels {
					src = in.Channels - 1
				}
				out[f*channels+c] = in.Data[f*in.Channels+src]
			}
		}
	}

	return &audio.Buffer{Data: out, Channels: channels, SampleRate: in.SampleRate}
}
