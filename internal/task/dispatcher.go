package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hermesapp/hermes-api/internal/domain"
	"github.com/hermesapp/hermes-api/internal/mediator"
	"github.com/hermesapp/hermes-api/internal/store"
)

// Dispatcher turns accepted ingest payloads into tracked background
// jobs. It registers a task row up front so callers get a task ID to
// poll, then hands the actual insert work to the queue.
type Dispatcher struct {
	queue        *Queue
	tasks        store.TaskStore
	db           store.Accessor
	logger       *slog.Logger
	pollInterval time.Duration
}

// NewDispatcher creates a dispatcher writing through tasks and db.
func NewDispatcher(queue *Queue, tasks store.TaskStore, db store.Accessor, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		queue:  queue,
		tasks:  tasks,
		db:     db,
		logger: logger,
	}
}

// SetPollInterval overrides the poll interval mediators created by this
// dispatcher use when waiting on other tasks.
func (d *Dispatcher) SetPollInterval(interval time.Duration) {
	d.pollInterval = interval
}

// EnqueueInserts registers a DB_INSERT task owned by userID and queues
// the batch work behind it. When updateGraph is false, batches aimed at
// the graph table are dropped before the job is queued. The returned
// task ID is terminal once the job finishes, success or not.
//
// Enqueue blocks when the queue is full, so a saturated backlog slows
// intake instead of growing without bound. If the job cannot be queued
// at all, the already-registered task is finalized as failed so the
// caller never polls a task that nothing will close.
func (d *Dispatcher) EnqueueInserts(ctx context.Context, userID uuid.UUID, batches []store.Batch, updateGraph bool) (uuid.UUID, error) {
	med := mediator.NewDBMediator(d.db, d.tasks, userID, domain.TaskTypeDBInsert)
	if d.pollInterval > 0 {
		med.SetPollInterval(d.pollInterval)
	}
	if err := med.Register(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("registering insert task: %w", err)
	}

	if !updateGraph {
		kept := make([]store.Batch, 0, len(batches))
		for _, b := range batches {
			if b.Table == mediator.GraphTable {
				continue
			}
			kept = append(kept, b)
		}
		batches = kept
	}

	job := Job{
		UserID: userID,
		TaskID: med.TaskID(),
		Run: func(jobCtx context.Context) {
			med.HandleDBInserts(jobCtx, batches, true)
		},
	}

	if err := d.queue.Enqueue(ctx, job); err != nil {
		med.RecordError(fmt.Errorf("enqueue failed: %w", err))
		med.Finalize(ctx)
		return uuid.Nil, fmt.Errorf("queueing insert job: %w", err)
	}

	d.logger.Debug("insert job dispatched",
		"task_id", med.TaskID(),
		"user_id", userID,
		"batches", len(batches),
		"update_graph", updateGraph)
	return med.TaskID(), nil
}
