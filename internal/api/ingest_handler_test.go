package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermesapp/hermes-api/internal/domain"
	"github.com/hermesapp/hermes-api/internal/store"
	"github.com/hermesapp/hermes-api/internal/task"
)

type fakeAccessor struct {
	mu       sync.Mutex
	inserted map[string][]store.Row
}

func newFakeAccessor() *fakeAccessor {
	return &fakeAccessor{inserted: make(map[string][]store.Row)}
}

func (a *fakeAccessor) InsertRow(_ context.Context, table string, row store.Row) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inserted[table] = append(a.inserted[table], row)
	return nil
}

func (a *fakeAccessor) InsertIgnoreConflict(ctx context.Context, table string, row store.Row) (bool, error) {
	return true, a.InsertRow(ctx, table, row)
}

func (a *fakeAccessor) InsertMany(ctx context.Context, table string, src store.RowSource) error {
	for {
		row, ok := src.Next()
		if !ok {
			return nil
		}
		if err := a.InsertRow(ctx, table, row); err != nil {
			return err
		}
	}
}

func (a *fakeAccessor) FetchOne(context.Context, string, string, any) (store.Row, error) {
	return nil, store.ErrNotFound
}

func (a *fakeAccessor) count(table string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.inserted[table])
}

func newIngestFixture(t *testing.T) (*IngestHandler, *fakeTaskStore, *fakeAccessor, *task.WorkerPool) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tasks := newFakeTaskStore()
	db := newFakeAccessor()
	queue := task.NewQueue(8, logger)
	pool := task.NewWorkerPool(queue, 2, logger)
	pool.Start()
	dispatcher := task.NewDispatcher(queue, tasks, db, logger)
	return NewIngestHandler(dispatcher), tasks, db, pool
}

func TestIngestAcceptsAndRunsBatches(t *testing.T) {
	h, tasks, db, pool := newIngestFixture(t)
	userID := uuid.New()

	body := `{
		"batches": [
			{"table": "entities", "rows": [{"id": "e1", "label": "alpha"}, {"id": "e2", "label": "beta"}]}
		],
		"update_graph": false
	}`
	req := authedRequest(httptest.NewRequest("POST", "/v1/ingest", strings.NewReader(body)), userID)
	rec := doRequest(h.Ingest, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEqual(t, uuid.Nil, resp.TaskID)

	pool.Stop()

	assert.Equal(t, 2, db.count("entities"))
	record, err := tasks.GetByID(req.Context(), resp.TaskID)
	require.NoError(t, err)
	assert.Equal(t, userID, record.Owner)
	assert.Equal(t, domain.TaskTypeDBInsert, record.Type)
	assert.True(t, record.Finished())
	assert.True(t, record.Success)
}

func TestIngestAppliesGraphBatchesByDefault(t *testing.T) {
	// A request that says nothing about update_graph gets its graph
	// batches applied, not dropped.
	h, tasks, db, pool := newIngestFixture(t)
	userID := uuid.New()

	body := `{
		"batches": [
			{"table": "graph_nodes", "rows": [{"email": "ada@example.com", "name": "Ada"}]},
			{"table": "entities", "rows": [{"id": "e1", "label": "alpha"}]}
		]
	}`
	req := authedRequest(httptest.NewRequest("POST", "/v1/ingest", strings.NewReader(body)), userID)
	rec := doRequest(h.Ingest, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	pool.Stop()

	assert.Equal(t, 1, db.count("graph_nodes"))
	assert.Equal(t, 1, db.count("entities"))

	record, err := tasks.GetByID(req.Context(), resp.TaskID)
	require.NoError(t, err)
	assert.True(t, record.Success)
}

func TestIngestDropsGraphBatchesWhenDisabled(t *testing.T) {
	h, _, db, pool := newIngestFixture(t)

	body := `{
		"batches": [
			{"table": "graph_nodes", "rows": [{"email": "ada@example.com"}]},
			{"table": "entities", "rows": [{"id": "e1", "label": "kept"}]}
		],
		"update_graph": false
	}`
	req := authedRequest(httptest.NewRequest("POST", "/v1/ingest", strings.NewReader(body)), uuid.New())
	rec := doRequest(h.Ingest, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	pool.Stop()

	assert.Equal(t, 0, db.count("graph_nodes"))
	assert.Equal(t, 1, db.count("entities"))
}

func TestIngestRejections(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		authed     bool
		wantStatus int
	}{
		{
			name:       "unauthenticated",
			body:       `{"batches":[{"table":"entities","rows":[{"id":"x"}]}]}`,
			authed:     false,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed body",
			body:       `{`,
			authed:     true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no batches",
			body:       `{"batches":[]}`,
			authed:     true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "batch without table",
			body:       `{"batches":[{"rows":[{"id":"x"}]}]}`,
			authed:     true,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _, pool := newIngestFixture(t)
			defer pool.Stop()

			req := httptest.NewRequest("POST", "/v1/ingest", strings.NewReader(tt.body))
			if tt.authed {
				req = authedRequest(req, uuid.New())
			}
			rec := doRequest(h.Ingest, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestIngestQueueClosed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tasks := newFakeTaskStore()
	queue := task.NewQueue(1, logger)
	queue.Close()
	h := NewIngestHandler(task.NewDispatcher(queue, tasks, newFakeAccessor(), logger))

	body := `{"batches":[{"table":"entities","rows":[{"id":"x"}]}]}`
	req := authedRequest(httptest.NewRequest("POST", "/v1/ingest", strings.NewReader(body)), uuid.New())
	rec := doRequest(h.Ingest, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var errResp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "Service is shutting down", errResp.Error)
}
