package shared

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)
	require.Len(t, traceID, TraceIDLength*2)

	other := SetTraceID(context.Background())
	assert.NotEqual(t, traceID, GetTraceID(other))
}

func TestGetTraceIDMissing(t *testing.T) {
	assert.Equal(t, "", GetTraceID(context.Background()))
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"hermes"}`))
	var p payload
	require.NoError(t, DecodeJSON(req, &p))
	assert.Equal(t, "hermes", p.Name)

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))
	assert.Error(t, DecodeJSON(req, &p))
}

func TestValidateRequestUsesStructTags(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}

	assert.Error(t, ValidateRequest(payload{Email: "not-an-email"}))
	assert.NoError(t, ValidateRequest(payload{Email: "ada@example.com"}))
}

func TestRespondWithErrorIncludesTraceID(t *testing.T) {
	ctx := SetTraceID(context.Background())
	req := httptest.NewRequest("GET", "/v1/tasks/abc", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, 404, "Task not found")

	assert.Equal(t, 404, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Task not found", body.Error)
	assert.Equal(t, GetTraceID(ctx), body.TraceID)
}

func TestRespondWithErrorAndLogSanitizes(t *testing.T) {
	req := httptest.NewRequest("POST", "/v1/ingest", nil)
	rec := httptest.NewRecorder()

	internal := assert.AnError
	RespondWithErrorAndLog(rec, req, 500, "Failed to queue work", internal)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to queue work", body.Error)
	assert.NotContains(t, rec.Body.String(), internal.Error())
}
