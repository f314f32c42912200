package processor

import (
	"context"
	"errors"
	"sync"
)

var ErrRunInProgress = errors.New("a batch run is already in progress")

// Worker runs one batch at a time on a background goroutine.
type Worker struct {
	runner *Runner

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	summary Summary
	err     error
}

func NewWorker(runner *Runner) *Worker {
	if runner == nil {
		runner = NewRunner(nil)
	}
	return &Worker{runner: runner}
}

// Start launches a run and returns immediately. paths is copied; settings is
// held by value for the lifetime of the run.
func (w *Worker) Start(ctx context.Context, paths []string, s Settings, obs Observer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return ErrRunInProgress
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.running = true
	w.cancel = cancel
	w.done = done
	w.summary = Summary{}
	w.err = nil

	batch := append([]string(nil), paths...)
	go func() {
		defer close(done)
		defer cancel()

		summary, err := w.runner.Run(runCtx, batch, s, obs)

		w.mu.Lock()
		w.summary = summary
		w.err = err
		w.running = false
		w.mu.Unlock()
	}()

	return nil
}

// Wait blocks until the current run finishes and returns its result. It
// returns immediately with the previous result when no run is in flight.
func (w *Worker) Wait() (Summary, error) {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()

	if done != nil {
		<-done
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.summary, w.err
}

// Cancel asks the current run to stop before its next file.
func (w *Worker) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
