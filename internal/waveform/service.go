// ABOUTME: Cache-aware waveform service fronting the reduction worker
// ABOUTME: Deduplicates concurrent requests per recording via singleflight
package waveform

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultTargetPoints is the envelope length used when the caller does
// not choose one.
const DefaultTargetPoints = 200

// Cache persists computed envelopes keyed by recording id.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(recordingID string) ([]float64, bool)
	Put(recordingID string, envelope []float64) error
}

// SamplesFunc lazily loads the first-channel samples of a recording. It
// is invoked only on a cache miss, so cached recordings skip decoding
// entirely.
type SamplesFunc func() ([]float64, error)

// ServiceConfig holds service dependencies and tuning.
type ServiceConfig struct {
	// Cache is consulted before computing and written after. Optional;
	// without one every request recomputes.
	Cache Cache

	// TargetPoints is the envelope length (default: DefaultTargetPoints).
	TargetPoints int

	// Logger for cache write failures.
	Logger zerolog.Logger
}

// Service computes waveform envelopes through a dedicated worker,
// checking the cache first and persisting fresh results. Concurrent
// requests for the same recording share one computation.
type Service struct {
	worker *Worker
	cache  Cache
	group  singleflight.Group
	target int
	log    zerolog.Logger
}

// NewService creates a service with its own worker goroutine.
func NewService(cfg ServiceConfig) *Service {
	if cfg.TargetPoints <= 0 {
		cfg.TargetPoints = DefaultTargetPoints
	}
	return &Service{
		worker: NewWorker(),
		cache:  cfg.Cache,
		target: cfg.TargetPoints,
		log:    cfg.Logger,
	}
}

// TargetPoints returns the envelope length this service produces.
func (s *Service) TargetPoints() int { return s.target }

// Envelope returns the waveform envelope for recordingID, loading
// samples and computing on a cache miss. A cancelled ctx stops the
// wait but not the shared computation: late joiners and the cache
// still receive the finished result.
func (s *Service) Envelope(ctx context.Context, recordingID string, samples SamplesFunc) ([]float64, error) {
	if s.cache != nil {
		if envelope, ok := s.cache.Get(recordingID); ok {
			return envelope, nil
		}
	}

	ch := s.group.DoChan(recordingID, func() (interface{}, error) {
		return s.compute(recordingID, samples)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float64), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) compute(recordingID string, samples SamplesFunc) (interface{}, error) {
	data, err := samples()
	if err != nil {
		return nil, fmt.Errorf("load samples for %s: %w", recordingID, err)
	}

	envelope, err := s.worker.Reduce(context.Background(), data, s.target)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Put(recordingID, envelope); err != nil {
			s.log.Warn().Err(err).Str("recording_id", recordingID).Msg("cache waveform")
		}
	}
	return envelope, nil
}

// Close terminates the worker. Outstanding Envelope calls return
// ErrWorkerClosed.
func (s *Service) Close() error {
	return s.worker.Close()
}
