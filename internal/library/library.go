// ABOUTME: Recording library over a directory of audio files
// ABOUTME: Scans for playable formats and persists loop points in JSON sidecars
package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/loopdeck/loopdeck-go/pkg/audio"
)

// sidecarSuffix is appended to a recording's filename for its loop
// points file, e.g. "groove.wav.loop.json".
const sidecarSuffix = ".loop.json"

// playableExtensions maps lowercase file extensions to the formats the
// decoder registry can handle.
var playableExtensions = map[string]string{
	".wav":  "wav",
	".mp3":  "mp3",
	".flac": "flac",
	".ogg":  "vorbis",
	".opus": "opus",
}

// Recording is one playable file in the library. ID is the filename
// relative to the library directory.
type Recording struct {
	ID     string
	Name   string
	Path   string
	Format string
}

// Library lists and loads recordings from a single directory.
type Library struct {
	dir string
	log zerolog.Logger
}

// New opens the library rooted at dir, creating it if needed.
func New(dir string, log zerolog.Logger) (*Library, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}
	return &Library{dir: dir, log: log}, nil
}

// Dir returns the library directory.
func (l *Library) Dir() string { return l.dir }

// Scan lists the playable recordings in the library, sorted by id.
// Subdirectories, hidden files and unknown extensions are skipped.
func (l *Library) Scan() ([]Recording, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("scan library: %w", err)
	}

	var out []Recording
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		format, ok := playableExtensions[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		out = append(out, Recording{
			ID:     entry.Name(),
			Name:   name,
			Path:   filepath.Join(l.dir, entry.Name()),
			Format: format,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	l.log.Debug().Int("recordings", len(out)).Str("dir", l.dir).Msg("library scanned")
	return out, nil
}

// Load reads the audio bytes of a recording.
func (l *Library) Load(recordingID string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, recordingID))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", recordingID, err)
	}
	return data, nil
}

// LoopPoints reads the loop-point sidecar for a recording. A missing
// sidecar returns (nil, nil): the recording simply has no saved loop.
func (l *Library) LoopPoints(recordingID string) (*audio.LoopPoints, error) {
	data, err := os.ReadFile(l.sidecarPath(recordingID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read loop points for %s: %w", recordingID, err)
	}

	var pts audio.LoopPoints
	if err := json.Unmarshal(data, &pts); err != nil {
		return nil, fmt.Errorf("decode loop points for %s: %w", recordingID, err)
	}
	return &pts, nil
}

// SaveLoopPoints persists edited loop points next to the recording.
// This is the only write path for loop points; playback never writes
// them back on its own.
func (l *Library) SaveLoopPoints(recordingID string, pts audio.LoopPoints) error {
	data, err := json.MarshalIndent(pts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode loop points for %s: %w", recordingID, err)
	}
	if err := os.WriteFile(l.sidecarPath(recordingID), data, 0644); err != nil {
		return fmt.Errorf("write loop points for %s: %w", recordingID, err)
	}
	return nil
}

// DeleteLoopPoints removes a recording's sidecar, if any.
func (l *Library) DeleteLoopPoints(recordingID string) error {
	err := os.Remove(l.sidecarPath(recordingID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove loop points for %s: %w", recordingID, err)
	}
	return nil
}

func (l *Library) sidecarPath(recordingID string) string {
	return filepath.Join(l.dir, recordingID+sidecarSuffix)
}
