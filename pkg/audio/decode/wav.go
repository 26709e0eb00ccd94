// ABOUTME: WAV audio decoder
// ABOUTME: Decodes RIFF/WAVE blobs to float64 samples via go-audio
package decode

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-audio/wav"

	"github.com/loopdeck/loopdeck-go/pkg/audio"
)

// WAVDecoder decodes WAV (RIFF/WAVE) audio.
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder.
func NewWAV() *WAVDecoder {
	return &WAVDecoder{}
}

// Decode converts WAV bytes to a float64 PCM buffer.
func (d *WAVDecoder) Decode(data []byte) (*audio.Buffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))

	ib, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav pcm: %w", err)
	}
	if ib == nil || ib.Format == nil || len(ib.Data) == 0 {
		return nil, errors.New("wav contains no pcm data")
	}

	bits := ib.SourceBitDepth
	if bits <= 0 {
		bits = int(dec.BitDepth)
	}
	if bits <= 0 {
		bits = 16
	}
	scale := float64(int64(1) << (bits - 1))

	out := make([]float64, len(ib.Data))
	for i, s := range ib.Data {
		out[i] = float64(s) / scale
	}

	return &audio.Buffer{
		Data:       out,
		Channels:   ib.Format.NumChannels,
		SampleRate: ib.Format.SampleRate,
	}, nil
}
