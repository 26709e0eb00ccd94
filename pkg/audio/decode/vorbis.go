// ABOUTME: Ogg Vorbis audio decoder
// ABOUTME: Decodes ogg/vorbis blobs to float64 samples via jfreymuth/oggvorbis
package decode

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jfreymuth/oggvorbis"

	"github.com/loopdeck/loopdeck-go/pkg/audio"
)

// VorbisDecoder decodes Ogg Vorbis audio.
type VorbisDecoder struct{}

// NewVorbis creates a new Ogg Vorbis decoder.
func NewVorbis() *VorbisDecoder {
	return &VorbisDecoder{}
}

// Decode converts ogg/vorbis bytes to a float64 PCM buffer.
func (d *VorbisDecoder) Decode(data []byte) (*audio.Buffer, error) {
	samples, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode vorbis stream: %w", err)
	}
	if len(samples) == 0 {
		return nil, errors.New("vorbis contains no audio")
	}

	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s)
	}

	return &audio.Buffer{
		Data:       out,
		Channels:   format.Channels,
		SampleRate: format.SampleRate,
	}, nil
}
