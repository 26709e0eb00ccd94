// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC blobs to float64 samples via mewkiz/flac
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/loopdeck/loopdeck-go/pkg/audio"
)

// FLACDecoder decodes FLAC audio.
type FLACDecoder struct{}

// NewFLAC creates a new FLAC decoder.
func NewFLAC() *FLACDecoder {
	return &FLACDecoder{}
}

// Decode converts FLAC bytes to a float64 PCM buffer.
func (d *FLACDecoder) Decode(data []byte) (*audio.Buffer, error) {
	stream, err := flac.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse flac stream: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	if channels <= 0 {
		return nil, errors.New("flac stream reports no channels")
	}
	scale := float64(int64(1) << (info.BitsPerSample - 1))

	out := make([]float64, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse flac frame: %w", err)
		}

		// Subframes hold one channel each; interleave per frame.
		n := frame.Subframes[0].NSamples
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				out = append(out, float64(frame.Subframes[ch].Samples[i])/scale)
			}
		}
	}
	if len(out) == 0 {
		return nil, errors.New("flac contains no audio")
	}

	return &audio.Buffer{
		Data:       out,
		Channels:   channels,
		SampleRate: int(info.SampleRate),
	}, nil
}
