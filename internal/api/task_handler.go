package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hermesapp/hermes-api/internal/api/middleware"
	"github.com/hermesapp/hermes-api/internal/api/shared"
	"github.com/hermesapp/hermes-api/internal/store"
)

// TaskHandler serves task status polling.
type TaskHandler struct {
	taskStore store.TaskStore
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskStore store.TaskStore) *TaskHandler {
	return &TaskHandler{taskStore: taskStore}
}

// GetTask handles GET /tasks/{id}. A task owned by another user is
// reported as not found so task IDs cannot be probed across accounts.
// Anonymous-owner tasks are visible to any authorized user.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found in request context")
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	record, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if record.Owner != uuid.Nil && record.Owner != userID {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskResponse{
		ID:           record.ID,
		Owner:        record.Owner,
		Type:         string(record.Type),
		TimeStart:    record.TimeStart,
		TimeFinished: record.TimeFinished,
		Error:        record.Error,
		Success:      record.Success,
		Finished:     record.Finished(),
	})
}
