package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrQueueClosed is returned by Enqueue after Close.
var ErrQueueClosed = errors.New("task queue is closed")

// Queue is a bounded FIFO job queue. Enqueue blocks once the queue
// holds its configured maximum of pending jobs, giving request
// handlers natural backpressure instead of unbounded memory growth.
type Queue struct {
	jobs   chan Job
	logger *slog.Logger

	// mu is held for reading across the channel send so Close never
	// closes the channel while an Enqueue is mid-flight.
	mu     sync.RWMutex
	closed bool
}

// NewQueue creates a queue holding at most size pending jobs.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{
		jobs:   make(chan Job, size),
		logger: logger,
	}
}

// Enqueue hands job to the queue, blocking while the queue is full.
// It unblocks as soon as a worker dequeues a job or ctx is cancelled.
// Returns ErrQueueClosed after Close, or ctx.Err() on cancellation.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("job enqueued",
			"task_id", job.TaskID,
			"user_id", job.UserID,
			"queue_len", len(q.jobs),
			"queue_cap", cap(q.jobs))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops intake and lets workers drain what is already queued.
// It waits for in-flight Enqueue calls to settle before closing the
// channel, so callers blocked on a full queue should have their
// context cancelled as part of shutdown.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("task queue closed", "pending", len(q.jobs))
	}
}

// Channel returns the read side of the queue for workers.
func (q *Queue) Channel() <-chan Job {
	return q.jobs
}

// Len reports the number of pending jobs.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Cap reports the configured capacity.
func (q *Queue) Cap() int {
	return cap(q.jobs)
}
