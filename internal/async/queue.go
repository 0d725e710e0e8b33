// Package async runs comparison jobs on a fixed worker pool. Each job is
// independent: workers share the comparator and the run store but no
// per-job state.
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkmathur/partsrecon/internal/pipeline"
	"github.com/nkmathur/partsrecon/internal/runs"
)

// Job is one queued comparison.
type Job struct {
	RunID        uuid.UUID
	EstimatePath string
	BillPath     string
	SubmittedAt  time.Time
	// Cleanup releases the job's scratch files. It runs after processing,
	// whether the comparison succeeded or not.
	Cleanup func()
}

type CompareQueue struct {
	comparator *pipeline.Comparator
	store      *runs.Store
	logger     *slog.Logger
	workers    int
	timeout    time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*CompareQueue)

func WithWorkers(n int) Option {
	return func(q *CompareQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *CompareQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(q *CompareQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewCompareQueue(comparator *pipeline.Comparator, store *runs.Store, logger *slog.Logger, opts ...Option) *CompareQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &CompareQueue{
		comparator: comparator,
		store:      store,
		logger:     logger,
		workers:    4,
		timeout:    2 * time.Minute,
		ch:         make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *CompareQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.process(workerID, job)
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *CompareQueue) process(workerID int, job Job) {
	if job.Cleanup != nil {
		defer job.Cleanup()
	}
	q.store.MarkRunning(job.RunID)

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	result, err := q.comparator.Compare(ctx, job.EstimatePath, job.BillPath)
	cancel()

	q.store.Finish(job.RunID, result, err)
	if err != nil {
		q.logger.Error("comparison failed", "worker_id", workerID, "run_id", job.RunID, "error", err)
	} else {
		q.logger.Info("comparison done", "worker_id", workerID, "run_id", job.RunID, "keys", len(result.Results))
	}
}

// Enqueue submits a job. When the queue is shutting down the job is dropped
// and its cleanup runs immediately.
func (q *CompareQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "run_id", job.RunID)
		if job.Cleanup != nil {
			job.Cleanup()
		}
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued comparison", "run_id", job.RunID)
	default:
		q.logger.Warn("queue full, applying backpressure", "run_id", job.RunID)
		q.ch <- job
	}
	return nil
}

// Shutdown stops intake and waits for in-flight jobs, or until ctx expires.
func (q *CompareQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
