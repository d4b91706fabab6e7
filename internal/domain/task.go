package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task validation errors
var (
	ErrEmptyTaskID     = errors.New("task ID cannot be empty")
	ErrInvalidTaskType = errors.New("invalid task type")
)

// TaskType identifies the kind of mediated work a task record audits.
type TaskType string

// The fixed, closed set of task kinds.
const (
	TaskTypeDBInsert     TaskType = "DB_INSERT"
	TaskTypeDBLookup     TaskType = "DB_LOOKUP"
	TaskTypeDBUpdate     TaskType = "DB_UPDATE"
	TaskTypeHermes       TaskType = "HERMES"
	TaskTypeUserNodes    TaskType = "USER_NODES"
	TaskTypeAuthenticate TaskType = "AUTHENTICATE"
	TaskTypeNewUser      TaskType = "NEW_USER"
)

// Valid reports whether t is one of the known task types.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeDBInsert, TaskTypeDBLookup, TaskTypeDBUpdate, TaskTypeHermes,
		TaskTypeUserNodes, TaskTypeAuthenticate, TaskTypeNewUser:
		return true
	}
	return false
}

// Task is the durable audit record of one mediated unit of work. A task
// is open from creation until the owning mediator finalizes it: while
// open, TimeFinished is nil and Success is false. Tasks are never
// deleted; the table is the audit trail.
type Task struct {
	ID           uuid.UUID  `json:"id"`
	Owner        uuid.UUID  `json:"owner"` // uuid.Nil for anonymous/bootstrap actions
	Type         TaskType   `json:"task_type"`
	TimeStart    time.Time  `json:"time_start"`
	TimeFinished *time.Time `json:"time_finished,omitempty"`
	Error        string     `json:"error"`
	Success      bool       `json:"success"`
}

// NewTask creates an open task record owned by owner. The ID is assigned
// here, before any storage call is issued.
func NewTask(owner uuid.UUID, taskType TaskType) *Task {
	return &Task{
		ID:        uuid.New(),
		Owner:     owner,
		Type:      taskType,
		TimeStart: time.Now().UTC(),
	}
}

// Finished reports whether the task has been finalized.
func (t *Task) Finished() bool {
	return t.TimeFinished != nil
}

// Finish closes the task in memory: records the finish time, joins the
// accumulated errors, and derives the success flag. Success is true iff
// no errors were recorded.
func (t *Task) Finish(errs []string) {
	now := time.Now().UTC()
	t.TimeFinished = &now
	t.Error = strings.Join(errs, ", ")
	t.Success = len(errs) == 0
}

// Validate checks that the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if !t.Type.Valid() {
		return ErrInvalidTaskType
	}
	return nil
}
