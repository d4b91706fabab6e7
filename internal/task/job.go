package task

import (
	"context"

	"github.com/google/uuid"
)

// Job is a zero-argument deferred unit of work: a closure over a fully
// constructed mediator and its arguments, plus the UUID of the user who
// ordered it. Ownership transfers to the queue at enqueue time; the
// worker that dequeues it owns it until Run returns.
type Job struct {
	// UserID identifies the originating user; uuid.Nil for anonymous
	// work.
	UserID uuid.UUID

	// TaskID is the mediator's task UUID, carried for logging; the
	// mediator inside Run owns the record itself.
	TaskID uuid.UUID

	// Run executes the mediated work. It must handle its own errors
	// (mediators record rather than raise) and finalize its own task.
	Run func(ctx context.Context)
}
