// ABOUTME: Disk-backed waveform envelope cache
// ABOUTME: One JSON file per recording, named by id hash, checked before recompute
package store

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileCache persists envelopes under a directory, one file per
// recording. Unreadable or corrupt entries count as misses so the
// caller simply recomputes.
type FileCache struct {
	dir string
	log zerolog.Logger
}

// NewFileCache creates the cache directory if needed.
func NewFileCache(dir string, log zerolog.Logger) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &FileCache{dir: dir, log: log}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) path(recordingID string) string {
	hash := sha256.Sum256([]byte(recordingID))
	return filepath.Join(c.dir, fmt.Sprintf("%x.json", hash[:8]))
}

// Get loads the envelope for recordingID from disk.
func (c *FileCache) Get(recordingID string) ([]float64, bool) {
	data, err := os.ReadFile(c.path(recordingID))
	if err != nil {
		return nil, false
	}

	var envelope []float64
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.log.Debug().Err(err).Str("recording_id", recordingID).Msg("corrupt envelope, recomputing")
		return nil, false
	}
	return envelope, true
}

// Put writes the envelope for recordingID to disk.
func (c *FileCache) Put(recordingID string, envelope []float64) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	path := c.path(recordingID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}

// Delete removes the cached envelope for recordingID, if any.
func (c *FileCache) Delete(recordingID string) error {
	err := os.Remove(c.path(recordingID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove envelope: %w", err)
	}
	return nil
}

// Clear removes every cached envelope.
func (c *FileCache) Clear() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("recreate cache directory: %w", err)
	}
	return nil
}
