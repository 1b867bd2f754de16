package grading

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Job is one submission waiting to be graded.
type Job struct {
	Path     string
	Filename string
}

type outcome struct {
	result Result
	err    error
}

type queuedJob struct {
	ctx    context.Context
	job    Job
	result chan outcome // buffered, a worker never blocks on an abandoned job
}

// Worker grades jobs on a fixed number of dedicated goroutines so callers
// handling chat updates never run a submission themselves.
type Worker struct {
	grader Grader
	size   int
	jobs   chan *queuedJob
	stop   chan struct{}

	running bool
	mu      sync.RWMutex
	wg      sync.WaitGroup
}

func NewWorker(grader Grader, size int) *Worker {
	if size <= 0 {
		size = 1
	}
	return &Worker{
		grader: grader,
		size:   size,
		jobs:   make(chan *queuedJob),
		stop:   make(chan struct{}),
	}
}

// Start launches the worker goroutines. They exit on Stop or when ctx is done.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return ErrWorkerAlreadyRunning
	}
	w.running = true
	w.stop = make(chan struct{})

	for i := 0; i < w.size; i++ {
		w.wg.Add(1)
		go w.run(ctx, w.stop)
	}
	log.Info().Int("workers", w.size).Msg("Grading worker started")
	return nil
}

// Stop signals the goroutines and waits for in-flight jobs to finish.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return ErrWorkerNotRunning
	}
	w.running = false
	close(w.stop)
	w.mu.Unlock()

	w.wg.Wait()
	log.Info().Msg("Grading worker stopped")
	return nil
}

// Submit queues job and waits for its verdict.
func (w *Worker) Submit(ctx context.Context, job Job) (Result, error) {
	w.mu.RLock()
	if !w.running {
		w.mu.RUnlock()
		return Result{}, ErrWorkerNotRunning
	}
	stop := w.stop
	w.mu.RUnlock()

	qj := &queuedJob{ctx: ctx, job: job, result: make(chan outcome, 1)}
	select {
	case w.jobs <- qj:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-stop:
		return Result{}, ErrWorkerNotRunning
	}

	select {
	case o := <-qj.result:
		return o.result, o.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (w *Worker) run(ctx context.Context, stop <-chan struct{}) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case qj := <-w.jobs:
			result, err := w.grader.Grade(qj.ctx, qj.job.Path, qj.job.Filename)
			qj.result <- outcome{result: result, err: err}
		}
	}
}
