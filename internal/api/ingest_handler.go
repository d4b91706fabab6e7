package api

import (
	"net/http"

	"github.com/hermesapp/hermes-api/internal/api/middleware"
	"github.com/hermesapp/hermes-api/internal/api/shared"
	"github.com/hermesapp/hermes-api/internal/store"
	"github.com/hermesapp/hermes-api/internal/task"
)

// IngestHandler accepts row batches and queues them for background
// persistence.
type IngestHandler struct {
	dispatcher *task.Dispatcher
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(dispatcher *task.Dispatcher) *IngestHandler {
	return &IngestHandler{dispatcher: dispatcher}
}

// Ingest handles POST /ingest. The work is accepted, not performed:
// the response carries a task ID the client polls for the outcome.
// When the queue is at capacity this call blocks until a worker frees
// a slot or the request context is cancelled.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found in request context")
		return
	}

	var req IngestRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	batches := make([]store.Batch, 0, len(req.Batches))
	for _, b := range req.Batches {
		rows := make([]store.Row, 0, len(b.Rows))
		for _, row := range b.Rows {
			rows = append(rows, store.Row(row))
		}
		batches = append(batches, store.Batch{
			Table: b.Table,
			Rows:  store.SliceRows(rows...),
		})
	}

	taskID, err := h.dispatcher.EnqueueInserts(r.Context(), userID, batches, req.updateGraph())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, IngestResponse{TaskID: taskID})
}
