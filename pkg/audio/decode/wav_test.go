// ABOUTME: Tests for the WAV decoder
// ABOUTME: Round-trips encoded WAV files through the decoder and checks sample values
package decode

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// encodeWAV builds a real WAV file and returns its bytes.
func encodeWAV(t *testing.T, rate, channels, bits int, samples []int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create temp wav: %v", err)
	}

	enc := wav.NewEncoder(f, rate, bits, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: bits,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close wav file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read wav file: %v", err)
	}
	return data
}

func TestWAVDecodeMono(t *testing.T) {
	t.Parallel()

	ints := []int{0, 16384, -16384, 32767, -32768}
	data := encodeWAV(t, 44100, 1, 16, ints)

	buf, err := NewWAV().Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if buf.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", buf.SampleRate)
	}
	if buf.Channels != 1 {
		t.Errorf("Channels = %d, want 1", buf.Channels)
	}
	if buf.FrameCount() != len(ints) {
		t.Fatalf("FrameCount = %d, want %d", buf.FrameCount(), len(ints))
	}

	for i, s := range ints {
		want := float64(s) / 32768.0
		if math.Abs(buf.Data[i]-want) > 1e-9 {
			t.Errorf("sample %d = %f, want %f", i, buf.Data[i], want)
		}
	}
}

func TestWAVDecodeStereoInterleave(t *testing.T) {
	t.Parallel()

	// L0, R0, L1, R1
	ints := []int{1000, -1000, 2000, -2000}
	data := encodeWAV(t, 48000, 2, 16, ints)

	buf, err := NewWAV().Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if buf.Channels != 2 || buf.FrameCount() != 2 {
		t.Fatalf("got %d channels, %d frames; want 2, 2", buf.Channels, buf.FrameCount())
	}

	left := buf.Channel(0)
	if math.Abs(left[0]-1000.0/32768.0) > 1e-9 || math.Abs(left[1]-2000.0/32768.0) > 1e-9 {
		t.Errorf("left channel mismatch: %v", left)
	}
	right := buf.Channel(1)
	if math.Abs(right[0]+1000.0/32768.0) > 1e-9 || math.Abs(right[1]+2000.0/32768.0) > 1e-9 {
		t.Errorf("right channel mismatch: %v", right)
	}
}

func TestWAVDecodeTruncated(t *testing.T) {
	t.Parallel()

	data := encodeWAV(t, 44100, 1, 16, []int{1, 2, 3, 4, 5, 6, 7, 8})
	if _, err := NewWAV().Decode(data[:20]); err == nil {
		t.Error("expected error for truncated wav data")
	}
}

func TestWAVDecodeThroughRegistry(t *testing.T) {
	t.Parallel()

	data := encodeWAV(t, 22050, 1, 16, []int{100, 200, 300})
	buf, err := NewRegistry().Decode(data)
	if err != nil {
		t.Fatalf("registry Decode() error: %v", err)
	}
	if buf.SampleRate != 22050 || buf.FrameCount() != 3 {
		t.Errorf("got rate %d frames %d, want 22050, 3", buf.SampleRate, buf.FrameCount())
	}
}
