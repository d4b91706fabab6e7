package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/hermesapp/hermes-api/internal/domain"
	"github.com/hermesapp/hermes-api/internal/platform/logger"
	"github.com/hermesapp/hermes-api/internal/store"
)

// TaskStore implements store.TaskStore using PostgreSQL.
type TaskStore struct {
	db store.DBTX
}

// Ensure TaskStore implements store.TaskStore.
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a TaskStore backed by db.
func NewTaskStore(db store.DBTX) *TaskStore {
	return &TaskStore{db: db}
}

// nullOwner converts uuid.Nil (anonymous tasks) to SQL NULL.
func nullOwner(owner uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: owner, Valid: owner != uuid.Nil}
}

// CreateOpen inserts an open task row: NULL finish time, empty error
// text, success false.
func (s *TaskStore) CreateOpen(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (id, owner, task_type, time_start, time_finished, error, success)
		VALUES ($1, $2, $3, $4, NULL, '', FALSE)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		nullOwner(task.Owner),
		task.Type,
		task.TimeStart.UTC(),
	)
	if err != nil {
		log.Error("failed to insert open task",
			"task_id", task.ID,
			"task_type", task.Type,
			"error", err)
		return store.NewStorageError("task", "insert", MapError(err))
	}

	return nil
}

// CreateClosed inserts a task row whose finish time and outcome are set
// at creation, bypassing the open/finalize two-step. Used for tracked
// logins.
func (s *TaskStore) CreateClosed(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if task.TimeFinished == nil {
		return fmt.Errorf("%w: closed task must carry a finish time", store.ErrInvalidEntity)
	}

	query := `
		INSERT INTO tasks (id, owner, task_type, time_start, time_finished, error, success)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		nullOwner(task.Owner),
		task.Type,
		task.TimeStart.UTC(),
		task.TimeFinished.UTC(),
		task.Error,
		task.Success,
	)
	if err != nil {
		log.Error("failed to insert closed task",
			"task_id", task.ID,
			"task_type", task.Type,
			"error", err)
		return store.NewStorageError("task", "insert", MapError(err))
	}

	return nil
}

// Close finalizes an existing task row, keyed by the task's UUID.
func (s *TaskStore) Close(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if task.TimeFinished == nil {
		return fmt.Errorf("%w: finalized task must carry a finish time", store.ErrInvalidEntity)
	}

	query := `
		UPDATE tasks
		SET time_finished = $1, error = $2, success = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		task.TimeFinished.UTC(),
		task.Error,
		task.Success,
		task.ID,
	)
	if err != nil {
		log.Error("failed to close task",
			"task_id", task.ID,
			"error", err)
		return store.NewStorageError("task", "update", MapError(err))
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a task record by its UUID.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, owner, task_type, time_start, time_finished, error, success
		FROM tasks
		WHERE id = $1
	`

	var (
		task     domain.Task
		owner    uuid.NullUUID
		finished sql.NullTime
		errText  sql.NullString
	)

	row := s.db.QueryRowContext(ctx, query, id)
	err := row.Scan(&task.ID, &owner, &task.Type, &task.TimeStart, &finished, &errText, &task.Success)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			"task_id", id,
			"error", err)
		return nil, store.NewStorageError("task", "select", MapError(err))
	}

	if owner.Valid {
		task.Owner = owner.UUID
	}
	if finished.Valid {
		t := finished.Time
		task.TimeFinished = &t
	}
	task.Error = errText.String

	return &task, nil
}
