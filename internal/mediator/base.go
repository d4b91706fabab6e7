package mediator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hermesapp/hermes-api/internal/domain"
	"github.com/hermesapp/hermes-api/internal/platform/logger"
	"github.com/hermesapp/hermes-api/internal/store"
)

// Lifecycle errors surfaced to mediator callers.
var (
	// ErrNotRegistered signals that the mediator failed to write its
	// initial task row. Callers must not proceed with work against an
	// unregistered mediator.
	ErrNotRegistered = errors.New("mediator failed to register its task")

	// ErrAlreadyRegistered signals a second Register call on the same
	// mediator instance; registering twice would duplicate the task row
	// under a reused UUID.
	ErrAlreadyRegistered = errors.New("mediator already registered")
)

// defaultPollInterval is the delay between WaitForTask polls when no
// interval has been configured.
const defaultPollInterval = 250 * time.Millisecond

// DefaultMaxRetries is the WaitForTask retry budget used when callers
// pass a non-positive value.
const DefaultMaxRetries = 10

// Base carries the lifecycle every concrete mediator shares: the task
// identity assigned at construction, the accumulated error list, and
// the writes that open and close the task's audit row.
//
// The task row's owner column reflects whatever the mediator's user ID
// holds at the moment the row is written. The auth mediator exploits
// this: it discovers the real user UUID mid-flight, before any row
// exists.
type Base struct {
	tasks        store.TaskStore
	userID       uuid.UUID
	taskID       uuid.UUID
	taskType     domain.TaskType
	timeStart    time.Time
	errs         []string
	registered   bool
	finalized    bool
	pollInterval time.Duration
}

// NewBase constructs the shared mediator state: a fresh task UUID, an
// empty error list, no storage I/O.
func NewBase(tasks store.TaskStore, userID uuid.UUID, taskType domain.TaskType) *Base {
	return &Base{
		tasks:        tasks,
		userID:       userID,
		taskID:       uuid.New(),
		taskType:     taskType,
		timeStart:    time.Now().UTC(),
		pollInterval: defaultPollInterval,
	}
}

// SetPollInterval overrides the delay between WaitForTask polls.
// Non-positive values are ignored.
func (m *Base) SetPollInterval(d time.Duration) {
	if d > 0 {
		m.pollInterval = d
	}
}

// TaskID returns the UUID of this mediator's task record.
func (m *Base) TaskID() uuid.UUID {
	return m.taskID
}

// UserID returns the UUID of the user the mediator acts for. uuid.Nil
// means the action is anonymous so far.
func (m *Base) UserID() uuid.UUID {
	return m.userID
}

// TaskType returns the mediator's current task type.
func (m *Base) TaskType() domain.TaskType {
	return m.taskType
}

// Successful reports whether the mediator has recorded no errors.
func (m *Base) Successful() bool {
	return len(m.errs) == 0
}

// Errors returns a copy of the accumulated error messages.
func (m *Base) Errors() []string {
	out := make([]string, len(m.errs))
	copy(out, m.errs)
	return out
}

// RecordError appends the string form of err to the error list. A nil
// err is ignored. Never fails.
func (m *Base) RecordError(err error) {
	if err == nil {
		return
	}
	m.errs = append(m.errs, err.Error())
}

// snapshot builds the task record from the mediator's current state.
// Owner and type are read here, at write time, not at construction.
func (m *Base) snapshot() *domain.Task {
	return &domain.Task{
		ID:        m.taskID,
		Owner:     m.userID,
		Type:      m.taskType,
		TimeStart: m.timeStart,
	}
}

// Register writes the initial open task row: NULL finish time, empty
// error text, success false. On storage failure it records the error
// and returns ErrNotRegistered. Exactly once per instance; a second
// call returns ErrAlreadyRegistered without touching storage.
func (m *Base) Register(ctx context.Context) error {
	if m.registered {
		return ErrAlreadyRegistered
	}

	if err := m.tasks.CreateOpen(ctx, m.snapshot()); err != nil {
		m.RecordError(err)
		return fmt.Errorf("%w: %v", ErrNotRegistered, err)
	}

	m.registered = true
	return nil
}

// Finalize closes the task row: finish time now, errors joined with
// ", ", success true iff the error list is empty. Best effort: a
// failed write is logged and recorded but never raised. Guarded
// against double invocation: a second call logs and does nothing, so
// the audit row keeps its first terminal state.
func (m *Base) Finalize(ctx context.Context) {
	log := logger.FromContext(ctx)

	if m.finalized {
		log.Warn("mediator finalized twice, keeping first terminal state",
			"task_id", m.taskID,
			"task_type", m.taskType)
		return
	}
	m.finalized = true

	task := m.snapshot()
	task.Finish(m.errs)

	if err := m.tasks.Close(ctx, task); err != nil {
		log.Error("failed to finalize task",
			"task_id", m.taskID,
			"error", err)
		m.RecordError(err)
	}
}

// TrackAnonymousAction writes a single combined insert whose finish
// time and outcome are set at creation, bypassing the open/finalize
// two-step. Used for actions that begin without a prior owner, such as
// login attempts. The task is terminal afterwards; Finalize on the
// same instance is a guarded no-op.
func (m *Base) TrackAnonymousAction(ctx context.Context) {
	log := logger.FromContext(ctx)

	if m.finalized {
		log.Warn("tracked action requested on a terminal mediator",
			"task_id", m.taskID)
		return
	}
	m.finalized = true

	task := m.snapshot()
	task.Finish(m.errs)

	if err := m.tasks.CreateClosed(ctx, task); err != nil {
		log.Error("failed to record tracked action",
			"task_id", m.taskID,
			"task_type", m.taskType,
			"error", err)
		m.RecordError(err)
	}
}

// WaitForTask polls the task store for target until its row is
// observed terminal. A successful target invokes onSuccess exactly
// once; a failed target is logged and onSuccess is skipped. If
// maxRetries polls pass without a terminal observation, a retry-
// exhausted error is recorded. Context cancellation exits promptly
// between polls without consuming the remaining budget.
func (m *Base) WaitForTask(
	ctx context.Context,
	target uuid.UUID,
	onSuccess func(ctx context.Context) error,
	maxRetries int,
) {
	log := logger.FromContext(ctx)

	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		task, err := m.tasks.GetByID(ctx, target)
		if err != nil {
			m.RecordError(err)
			return
		}

		if task.Finished() {
			if !task.Success {
				log.Warn("awaited task finished with errors",
					"target_task", target,
					"error", task.Error)
				return
			}
			if err := onSuccess(ctx); err != nil {
				m.RecordError(err)
			}
			return
		}

		// Not terminal yet; sleep before the next poll, honoring
		// cancellation.
		timer := time.NewTimer(m.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.RecordError(ctx.Err())
			return
		case <-timer.C:
		}
	}

	m.RecordError(fmt.Errorf("max retries exceeded: %d polls made waiting on task %s", maxRetries, target))
}
