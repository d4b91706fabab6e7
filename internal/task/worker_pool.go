package task

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultWorkerCount is the number of workers started when the
// configuration does not say otherwise.
const DefaultWorkerCount = 4

// WorkerPool runs a fixed set of goroutines that consume jobs from a
// Queue. A job picked up by a worker always runs to completion, so
// persistence work is never abandoned halfway through shutdown.
type WorkerPool struct {
	queue   *Queue
	workers int
	logger  *slog.Logger

	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// NewWorkerPool creates a pool of workers consuming from queue.
func NewWorkerPool(queue *Queue, workers int, logger *slog.Logger) *WorkerPool {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	return &WorkerPool{
		queue:   queue,
		workers: workers,
		logger:  logger,
	}
}

// Start launches the worker goroutines. It is a no-op when called a
// second time.
func (p *WorkerPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	p.logger.Info("starting worker pool", "workers", p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
}

// Stop closes the queue and waits until every worker has drained the
// remaining jobs and exited.
func (p *WorkerPool) Stop() {
	p.queue.Close()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// run is the worker loop. It exits when the queue channel is closed
// and drained.
func (p *WorkerPool) run(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Debug("worker started")

	for job := range p.queue.Channel() {
		p.execute(logger, job)
	}

	logger.Debug("worker exiting")
}

// execute runs a single job, recovering from panics so one bad job
// cannot take down the worker.
func (p *WorkerPool) execute(logger *slog.Logger, job Job) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked",
				"task_id", job.TaskID,
				"user_id", job.UserID,
				"panic", r)
		}
	}()

	logger.Debug("job started", "task_id", job.TaskID, "user_id", job.UserID)

	// Jobs run against a fresh context rather than the request context
	// that enqueued them, so an HTTP client disconnecting cannot cancel
	// persistence work that has already been accepted.
	job.Run(context.Background())

	logger.Debug("job finished",
		"task_id", job.TaskID,
		"user_id", job.UserID,
		"duration_ms", time.Since(start).Milliseconds())
}
