// ABOUTME: Decoder interface, container detection and format registry
// ABOUTME: Dispatches opaque audio blobs to the decoder matching their signature
package decode

import (
	"bytes"
	"sync"

	"github.com/loopdeck/loopdeck-go/pkg/audio"
)

// Decoder decodes a complete compressed audio blob into PCM.
type Decoder interface {
	// Decode converts encoded audio data to a float64 PCM buffer.
	Decode(data []byte) (*audio.Buffer, error)
}

// Format identifies an audio container by its signature.
type Format string

const (
	FormatUnknown Format = ""
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatFLAC    Format = "flac"
	FormatVorbis  Format = "vorbis"
	FormatOpus    Format = "opus"
)

// Detect sniffs the container signature of a blob. Returns FormatUnknown
// when no known signature matches.
func Detect(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		if len(data) >= 12 && bytes.Equal(data[8:12], []byte("WAVE")) {
			return FormatWAV
		}
		return FormatUnknown

	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC

	case bytes.HasPrefix(data, []byte("OggS")):
		// The identification header sits in the first ogg page.
		head := data
		if len(head) > 512 {
			head = head[:512]
		}
		if bytes.Contains(head, []byte("OpusHead")) {
			return FormatOpus
		}
		if bytes.Contains(head, []byte("\x01vorbis")) {
			return FormatVorbis
		}
		return FormatUnknown

	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3

	case data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// Bare MPEG frame sync without an ID3 tag.
		return FormatMP3
	}

	return FormatUnknown
}

// Registry maps container formats to decoders and dispatches blobs by
// their detected signature. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	decoders map[Format]Decoder
}

// NewRegistry creates a registry with all built-in decoders registered.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[Format]Decoder)}
	r.Register(FormatWAV, NewWAV())
	r.Register(FormatMP3, NewMP3())
	r.Register(FormatFLAC, NewFLAC())
	r.Register(FormatVorbis, NewVorbis())
	r.Register(FormatOpus, NewOpus())
	return r
}

// Register installs a decoder for a format, replacing any previous one.
func (r *Registry) Register(f Format, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[f] = d
}

// Decode detects the blob's container and decodes it with the matching
// decoder. All failures are returned as *Error.
func (r *Registry) Decode(data []byte) (*audio.Buffer, error) {
	if len(data) == 0 {
		return nil, &Error{Format: FormatUnknown, Err: ErrEmptyData}
	}

	f := Detect(data)
	if f == FormatUnknown {
		return nil, &Error{Format: FormatUnknown, Err: ErrUnknownFormat}
	}

	r.mu.RLock()
	dec, ok := r.decoders[f]
	r.mu.RUnlock()
	if !ok {
		return nil, &Error{Format: f, Err: ErrNoDecoder}
	}

	buf, err := dec.Decode(data)
	if err != nil {
		return nil, &Error{Format: f, Err: err}
	}
	return buf, nil
}
