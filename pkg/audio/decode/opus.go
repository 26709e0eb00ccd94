// ABOUTME: Ogg Opus audio decoder
// ABOUTME: Decodes ogg/opus blobs to float64 samples via hraban/opus
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	opus "gopkg.in/hraban/opus.v2"

	"github.com/loopdeck/loopdeck-go/pkg/audio"
)

// Opus always decodes at 48kHz regardless of the input rate.
const opusSampleRate = 48000

// OpusDecoder decodes Ogg Opus audio.
type OpusDecoder struct{}

// NewOpus creates a new Ogg Opus decoder.
func NewOpus() *OpusDecoder {
	return &OpusDecoder{}
}

// Decode converts ogg/opus bytes to a float64 PCM buffer.
func (d *OpusDecoder) Decode(data []byte) (*audio.Buffer, error) {
	channels, err := opusChannels(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open opus stream: %w", err)
	}
	defer stream.Close()

	var out []float64
	pcm := make([]float32, 16384)
	for {
		n, err := stream.ReadFloat32(pcm)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode opus stream: %w", err)
		}
		if n == 0 {
			break
		}
		// n counts samples per channel; data is interleaved.
		for _, s := range pcm[:n*channels] {
			out = append(out, float64(s))
		}
	}
	if len(out) == 0 {
		return nil, errors.New("opus contains no audio")
	}

	return &audio.Buffer{
		Data:       out,
		Channels:   channels,
		SampleRate: opusSampleRate,
	}, nil
}

// opusChannels reads the channel count from the OpusHead identification
// header in the first ogg page.
func opusChannels(data []byte) (int, error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	idx := bytes.Index(head, []byte("OpusHead"))
	if idx < 0 || idx+10 > len(data) {
		return 0, errors.New("missing opus identification header")
	}
	channels := int(data[idx+9])
	if channels <= 0 {
		return 0, errors.New("opus header reports no channels")
	}
	return channels, nil
}
