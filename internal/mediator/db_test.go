package mediator

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hermesapp/hermes-api/internal/domain"
	"github.com/hermesapp/hermes-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDBMediator(t *testing.T) (*DBMediator, *fakeAccessor, *fakeTaskStore) {
	t.Helper()

	db := newFakeAccessor()
	tasks := newFakeTaskStore()
	m := NewDBMediator(db, tasks, uuid.New(), domain.TaskTypeDBInsert)
	require.NoError(t, m.Register(context.Background()))

	return m, db, tasks
}

func TestHandleConflictsIdempotentReinsertion(t *testing.T) {
	t.Parallel()

	m, db, _ := newDBMediator(t)

	rows := func() store.RowSource {
		return store.SliceRows(
			store.Row{"email": "a@example.com", "name": "A"},
			store.Row{"email": "b@example.com", "name": "B"},
		)
	}

	m.HandleConflicts(context.Background(), GraphTable, rows())
	m.HandleConflicts(context.Background(), GraphTable, rows())

	assert.True(t, m.Successful(), "duplicate keys are a designed outcome")
	assert.Len(t, db.rows[GraphTable], 2, "exactly one row per conflict key")
}

func TestHandleConflictsStopsOnStorageError(t *testing.T) {
	t.Parallel()

	m, db, _ := newDBMediator(t)
	db.failOn[GraphTable] = errors.New("disk full")

	src := store.SliceRows(
		store.Row{"email": "a@example.com"},
		store.Row{"email": "b@example.com"},
	)
	m.HandleConflicts(context.Background(), GraphTable, src)

	assert.False(t, m.Successful())
	assert.Empty(t, db.rows[GraphTable])

	// The drain stopped on the first error; the rest of the sequence is
	// left unconsumed.
	_, ok := src.Next()
	assert.True(t, ok, "remaining rows are not drained after the error")
}

func TestHandleDBInsertsBatchIsolation(t *testing.T) {
	t.Parallel()

	m, db, tasks := newDBMediator(t)
	db.failOn["entities"] = errors.New("constraint violated")

	batches := []store.Batch{
		{Table: "messages", Rows: store.SliceRows(store.Row{"id": 1}, store.Row{"id": 2})},
		{Table: "entities", Rows: store.SliceRows(store.Row{"id": 3})},
		{Table: "interactions", Rows: store.SliceRows(store.Row{"id": 4})},
	}

	m.HandleDBInserts(context.Background(), batches, true)

	// Batches 1 and 3 still applied around the failing batch 2.
	assert.Len(t, db.rows["messages"], 2)
	assert.Len(t, db.rows["interactions"], 1)
	assert.Empty(t, db.rows["entities"])

	require.False(t, m.Successful())
	assert.Contains(t, m.Errors()[0], "constraint violated")

	row := tasks.get(m.TaskID())
	require.NotNil(t, row.TimeFinished, "logTask finalizes after all batches")
	assert.False(t, row.Success)
}

func TestHandleDBInsertsRoutesGraphTable(t *testing.T) {
	t.Parallel()

	m, db, _ := newDBMediator(t)

	batches := []store.Batch{
		{Table: GraphTable, Rows: store.SliceRows(
			store.Row{"email": "dup@example.com"},
			store.Row{"email": "dup@example.com"},
		)},
	}

	m.HandleDBInserts(context.Background(), batches, false)

	assert.True(t, m.Successful())
	assert.Len(t, db.rows[GraphTable], 1, "graph batches take the conflict-tolerant path")
}

func TestHandleDBInsertsWithoutLogTask(t *testing.T) {
	t.Parallel()

	m, _, tasks := newDBMediator(t)

	m.HandleDBInserts(context.Background(), nil, false)

	row := tasks.get(m.TaskID())
	assert.Nil(t, row.TimeFinished, "task stays open when logTask is false")
}

func TestInsertRowRecordsFailure(t *testing.T) {
	t.Parallel()

	m, db, _ := newDBMediator(t)

	m.InsertRow(context.Background(), "messages", store.Row{"id": 1})
	assert.True(t, m.Successful())
	assert.Len(t, db.rows["messages"], 1)

	db.failOn["messages"] = errors.New("timeout")
	m.InsertRow(context.Background(), "messages", store.Row{"id": 2})
	assert.False(t, m.Successful())
}
