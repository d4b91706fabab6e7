package api

import (
	"time"

	"github.com/google/uuid"
)

// Common request/response structures

// LoginResponse is returned by the login endpoint after token
// resolution. TaskID references the tracked authentication task row.
type LoginResponse struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Permission string    `json:"permission"`
	Verified   bool      `json:"verified"`
	NewUser    bool      `json:"new_user"`
	TaskID     uuid.UUID `json:"task_id"`
}

// CredentialsRequest carries a third-party OAuth credential bundle to
// persist for the authenticated user.
type CredentialsRequest struct {
	Token        string   `json:"token"         validate:"required"`
	RefreshToken string   `json:"refresh_token"`
	TokenURI     string   `json:"token_uri"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
}

// IngestBatch is one table's worth of rows in an ingest request.
type IngestBatch struct {
	Table string           `json:"table" validate:"required"`
	Rows  []map[string]any `json:"rows"  validate:"required,min=1"`
}

// IngestRequest asks the service to persist row batches in the
// background. UpdateGraph controls whether graph-table batches are
// applied or dropped; omitting the field means apply them.
type IngestRequest struct {
	Batches     []IngestBatch `json:"batches" validate:"required,min=1,dive"`
	UpdateGraph *bool         `json:"update_graph"`
}

// updateGraph resolves the tri-state field to its effective value.
func (r IngestRequest) updateGraph() bool {
	if r.UpdateGraph == nil {
		return true
	}
	return *r.UpdateGraph
}

// IngestResponse acknowledges accepted ingest work with the task ID to
// poll for completion.
type IngestResponse struct {
	TaskID uuid.UUID `json:"task_id"`
}

// TaskResponse is the polling view of a task record.
type TaskResponse struct {
	ID           uuid.UUID  `json:"id"`
	Owner        uuid.UUID  `json:"owner,omitempty"`
	Type         string     `json:"type"`
	TimeStart    time.Time  `json:"time_start"`
	TimeFinished *time.Time `json:"time_finished,omitempty"`
	Error        string     `json:"error,omitempty"`
	Success      bool       `json:"success"`
	Finished     bool       `json:"finished"`
}
