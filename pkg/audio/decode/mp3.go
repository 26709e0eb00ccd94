// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 blobs to float64 samples via go-mp3
package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/loopdeck/loopdeck-go/pkg/audio"
)

// MP3Decoder decodes MP3 audio.
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder.
func NewMP3() *MP3Decoder {
	return &MP3Decoder{}
}

// Decode converts MP3 bytes to a float64 PCM buffer. go-mp3 always
// produces 16-bit little-endian stereo at the stream's sample rate.
func (d *MP3Decoder) Decode(data []byte) (*audio.Buffer, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open mp3 stream: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode mp3 stream: %w", err)
	}
	if len(raw) < 2 {
		return nil, errors.New("mp3 contains no audio")
	}

	samples := make([]float64, len(raw)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = audio.SampleFromInt16(s)
	}

	return &audio.Buffer{
		Data:       samples,
		Channels:   2,
		SampleRate: dec.SampleRate(),
	}, nil
}
