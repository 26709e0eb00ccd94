// ABOUTME: In-memory waveform envelope cache
// ABOUTME: Copies values on both paths so callers never alias cache internals
package store

import "sync"

// MemoryCache keeps envelopes in a map. Safe for concurrent use.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string][]float64
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string][]float64)}
}

// Get returns a copy of the cached envelope for recordingID.
func (c *MemoryCache) Get(recordingID string) ([]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	envelope, ok := c.data[recordingID]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(envelope))
	copy(out, envelope)
	return out, true
}

// Put stores a copy of envelope under recordingID.
func (c *MemoryCache) Put(recordingID string, envelope []float64) error {
	stored := make([]float64, len(envelope))
	copy(stored, envelope)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[recordingID] = stored
	return nil
}

// Delete drops the envelope for recordingID, if any.
func (c *MemoryCache) Delete(recordingID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, recordingID)
}

// Len reports how many envelopes are cached.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
