// ABOUTME: Play-history log keyed by recording id
// ABOUTME: Persists timestamps to JSON and answers trailing-window recency queries
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RecentWindow is how far back Recent looks.
const RecentWindow = 7 * 24 * time.Hour

// Entry is one recorded playback.
type Entry struct {
	RecordingID string    `json:"recordingId"`
	PlayedAt    time.Time `json:"playedAt"`
}

// Store tracks the last time each recording was played. With a path it
// persists as a JSON map on every write; with an empty path it is
// memory only. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]time.Time
	now     func() time.Time
	log     zerolog.Logger
}

// NewStore opens or creates the history log at path. A corrupt file is
// logged and replaced with an empty log rather than failing startup.
func NewStore(path string, log zerolog.Logger) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]time.Time),
		now:     time.Now,
		log:     log,
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("corrupt play history, starting empty")
		s.entries = make(map[string]time.Time)
	}
	return s, nil
}

// Record notes that recordingID was played at playedAt, replacing any
// earlier timestamp for the same recording.
func (s *Store) Record(recordingID string, playedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[recordingID] = playedAt
	return s.persistLocked()
}

// LastPlayed returns when recordingID was last played.
func (s *Store) LastPlayed(recordingID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.entries[recordingID]
	return at, ok
}

// Recent returns entries played within RecentWindow of now, most
// recent first.
func (s *Store) Recent() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-RecentWindow)
	out := make([]Entry, 0, len(s.entries))
	for id, at := range s.entries {
		if at.Before(cutoff) {
			continue
		}
		out = append(out, Entry{RecordingID: id, PlayedAt: at})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlayedAt.Equal(out[j].PlayedAt) {
			return out[i].PlayedAt.After(out[j].PlayedAt)
		}
		return out[i].RecordingID < out[j].RecordingID
	})
	return out
}

// RecentIDs returns just the recording ids from Recent, in the same
// order.
func (s *Store) RecentIDs() []string {
	entries := s.Recent()
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.RecordingID
	}
	return ids
}

// Prune drops entries older than RecentWindow and persists the result.
func (s *Store) Prune() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-RecentWindow)
	for id, at := range s.entries {
		if at.Before(cutoff) {
			delete(s.entries, id)
		}
	}
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
