package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hermesapp/hermes-api/internal/domain"
)

// TaskStore defines the persistence surface for task audit records.
// Mediators are the only writers; anything may read.
type TaskStore interface {
	// CreateOpen inserts an open task row: finish time NULL, success
	// false, empty error text. Called exactly once per mediator
	// instance by Register.
	CreateOpen(ctx context.Context, task *domain.Task) error

	// CreateClosed inserts a task row that is finished at creation time,
	// bypassing the open/finalize two-step. Used for tracked logins and
	// other actions that begin without a prior owner.
	CreateClosed(ctx context.Context, task *domain.Task) error

	// Close finalizes an existing task row by ID: sets the finish time,
	// the aggregated error text, and the success flag.
	Close(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task record by its UUID.
	// Returns ErrTaskNotFound if no such task exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}
