// ABOUTME: Dedicated goroutine running waveform reductions off the caller's thread
// ABOUTME: One request gets exactly one reply; panics are recovered as WorkerError
package waveform

import (
	"context"
	"fmt"
	"sync"
)

type request struct {
	samples []float64
	target  int
	reply   chan response
}

type response struct {
	envelope []float64
	err      error
}

// Worker runs reductions on its own goroutine so multi-minute buffers
// never stall playback ticks or UI rendering. Requests are message
// passed; callers that stop waiting simply abandon their reply channel.
type Worker struct {
	requests chan request
	quit     chan struct{}
	done     chan struct{}
	reduce   func([]float64, int) ([]float64, error)

	mu     sync.Mutex
	closed bool
}

// NewWorker starts the reduction goroutine.
func NewWorker() *Worker {
	return newWorker(Reduce)
}

func newWorker(fn func([]float64, int) ([]float64, error)) *Worker {
	w := &Worker{
		requests: make(chan request, 4),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		reduce:   fn,
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			return
		case req := <-w.requests:
			resp := w.process(req)
			select {
			case <-w.quit:
				// Terminated mid-computation: the result is discarded,
				// never delivered stale.
				return
			default:
				req.reply <- resp
			}
		}
	}
}

// process runs one reduction, converting panics into WorkerError so a
// bad request cannot kill the goroutine.
func (w *Worker) process(req request) (resp response) {
	defer func() {
		if r := recover(); r != nil {
			resp = response{err: &WorkerError{Reason: fmt.Sprint(r)}}
		}
	}()

	envelope, err := w.reduce(req.samples, req.target)
	return response{envelope: envelope, err: err}
}

// Reduce submits samples and waits for the single reply. A cancelled
// ctx abandons the wait; the computation still finishes inside the
// worker but its result goes nowhere.
func (w *Worker) Reduce(ctx context.Context, samples []float64, targetPoints int) ([]float64, error) {
	reply := make(chan response, 1)
	req := request{samples: samples, target: targetPoints, reply: reply}

	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, ErrWorkerClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case resp := <-reply:
		return resp.envelope, resp.err
	case <-w.quit:
		return nil, ErrWorkerClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close terminates the worker and joins its goroutine. In-flight
// computations are discarded. Safe to call repeatedly.
func (w *Worker) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.quit)
	w.mu.Unlock()

	<-w.done
	return nil
}
