// ABOUTME: Tests for the waveform reduction worker
// ABOUTME: Covers request/reply pairing, panic recovery, termination and abandonment
package waveform

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWorkerReducesOffThread(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	envelope, err := w.Reduce(context.Background(), []float64{1, 1, 2, 2}, 2)
	if err != nil {
		t.Fatalf("Reduce() error: %v", err)
	}
	if len(envelope) != 2 {
		t.Fatalf("expected 2 points, got %d", len(envelope))
	}
	if envelope[0] != 0.5 || envelope[1] != 1.0 {
		t.Errorf("envelope = %v, want [0.5 1]", envelope)
	}

	// The worker keeps serving after the first request.
	again, err := w.Reduce(context.Background(), make([]float64, 100), 10)
	if err != nil {
		t.Fatalf("second Reduce() error: %v", err)
	}
	if len(again) != 10 {
		t.Errorf("expected 10 points, got %d", len(again))
	}
}

func TestWorkerPropagatesReduceErrors(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	if _, err := w.Reduce(context.Background(), []float64{1}, 0); !errors.Is(err, ErrInvalidTargetPoints) {
		t.Errorf("expected ErrInvalidTargetPoints, got %v", err)
	}
}

func TestWorkerRecoversPanics(t *testing.T) {
	w := newWorker(func(samples []float64, target int) ([]float64, error) {
		if len(samples) == 13 {
			panic("unlucky buffer")
		}
		return Reduce(samples, target)
	})
	defer w.Close()

	_, err := w.Reduce(context.Background(), make([]float64, 13), 4)
	var werr *WorkerError
	if !errors.As(err, &werr) {
		t.Fatalf("expected WorkerError, got %v", err)
	}
	if !strings.Contains(werr.Reason, "unlucky buffer") {
		t.Errorf("expected panic value in reason, got %q", werr.Reason)
	}

	// One panicking request must not kill the goroutine.
	envelope, err := w.Reduce(context.Background(), make([]float64, 40), 4)
	if err != nil {
		t.Fatalf("Reduce() after panic: %v", err)
	}
	if len(envelope) != 4 {
		t.Errorf("expected 4 points, got %d", len(envelope))
	}
}

func TestWorkerCloseRejectsRequests(t *testing.T) {
	w := NewWorker()
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}

	if _, err := w.Reduce(context.Background(), []float64{1, 2}, 1); !errors.Is(err, ErrWorkerClosed) {
		t.Errorf("expected ErrWorkerClosed, got %v", err)
	}
}

func TestWorkerTerminationDiscardsInFlightResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	w := newWorker(func(samples []float64, target int) ([]float64, error) {
		close(started)
		<-release
		return make([]float64, target), nil
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := w.Reduce(context.Background(), []float64{1, 2, 3}, 2)
		errCh <- err
	}()

	<-started
	closeDone := make(chan struct{})
	go func() {
		w.Close()
		close(closeDone)
	}()

	// The waiter unblocks as soon as termination is signalled, without
	// receiving the stale envelope.
	select {
	case err := <-errCh:
		if !errors.Is(err, ErrWorkerClosed) {
			t.Errorf("expected ErrWorkerClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Reduce() did not unblock on Close")
	}

	close(release)
	select {
	case <-closeDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not join the worker goroutine")
	}
}

func TestWorkerAbandonedContextLeavesWorkerUsable(t *testing.T) {
	release := make(chan struct{})
	w := newWorker(func(samples []float64, target int) ([]float64, error) {
		if len(samples) > 0 && samples[0] == 999 {
			<-release
		}
		return Reduce(samples, target)
	})
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := w.Reduce(ctx, []float64{999, 0, 0, 0}, 2)
		errCh <- err
	}()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Reduce() did not honor cancellation")
	}

	close(release)

	// The abandoned reply lands in its buffered channel; the worker
	// moves on to the next request.
	envelope, err := w.Reduce(context.Background(), []float64{1, 1, 2, 2}, 2)
	if err != nil {
		t.Fatalf("Reduce() after abandonment: %v", err)
	}
	if len(envelope) != 2 {
		t.Errorf("expected 2 points, got %d", len(envelope))
	}
}
