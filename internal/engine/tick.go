// ABOUTME: Periodic tick source driving playback position tracking
// ABOUTME: Wraps time.Ticker behind an interface so tests can drive ticks manually
package engine

import (
	"sync"
	"time"
)

// DefaultTickInterval is how often position tracking runs when the
// caller does not choose an interval.
const DefaultTickInterval = 10 * time.Millisecond

// TickSource produces periodic callbacks used to poll playback position.
type TickSource interface {
	// Start begins delivering ticks to fn and returns a handle that
	// cancels the stream.
	Start(fn func(now time.Time)) TickHandle
}

// TickHandle cancels a running tick stream. Stop returns immediately;
// one tick already in flight may still be delivered afterward, so
// callback owners must tolerate a single stale delivery.
type TickHandle interface {
	Stop()
}

// TickerSource delivers ticks from a time.Ticker on its own goroutine.
type TickerSource struct {
	// Interval between ticks. Zero means DefaultTickInterval.
	Interval time.Duration
}

// Start launches the ticker goroutine.
func (t *TickerSource) Start(fn func(now time.Time)) TickHandle {
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	h := &tickerHandle{quit: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-h.quit:
				return
			case now := <-ticker.C:
				fn(now)
			}
		}
	}()
	return h
}

type tickerHandle struct {
	once sync.Once
	quit chan struct{}
}

// Stop signals the ticker goroutine to exit. Safe to call repeatedly
// and from inside a tick callback.
func (h *tickerHandle) Stop() {
	h.once.Do(func() { close(h.quit) })
}
