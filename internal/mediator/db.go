package mediator

import (
	"context"

	"github.com/google/uuid"
	"github.com/hermesapp/hermes-api/internal/domain"
	"github.com/hermesapp/hermes-api/internal/platform/logger"
	"github.com/hermesapp/hermes-api/internal/store"
)

// GraphTable is the distinguished batch target whose rows take the
// conflict-tolerant insert path: graph nodes are re-derived from
// source data, so re-insertion of an existing node is expected and
// must not fail the batch.
const GraphTable = "graph_nodes"

// DBMediator applies named batches of rows to their target tables as
// background work, with per-batch failure isolation.
type DBMediator struct {
	*Base
	db store.Accessor
}

// NewDBMediator constructs a DBMediator for the given user and task
// type. No storage I/O happens until Register.
func NewDBMediator(db store.Accessor, tasks store.TaskStore, userID uuid.UUID, taskType domain.TaskType) *DBMediator {
	return &DBMediator{
		Base: NewBase(tasks, userID, taskType),
		db:   db,
	}
}

// HandleConflicts drains rows one at a time into table, silently
// skipping rows whose conflict key already exists. The first unrelated
// storage error is recorded and stops the drain; remaining rows are
// left unprocessed.
func (m *DBMediator) HandleConflicts(ctx context.Context, table string, rows store.RowSource) {
	log := logger.FromContext(ctx)

	for row, ok := rows.Next(); ok; row, ok = rows.Next() {
		inserted, err := m.db.InsertIgnoreConflict(ctx, table, row)
		if err != nil {
			log.Error("conflict-tolerant batch aborted",
				"table", table,
				"task_id", m.TaskID(),
				"error", err)
			m.RecordError(err)
			return
		}
		if !inserted {
			log.Debug("row skipped, conflict key already present", "table", table)
		}
	}

	log.Debug("conflict-tolerant batch applied", "table", table, "task_id", m.TaskID())
}

// HandleDBInserts applies an ordered sequence of batches. The graph
// table routes through HandleConflicts; every other table takes a bulk
// insert. A failed batch is recorded and iteration continues with the
// next batch, so one bad batch cannot discard the others. When logTask
// is set, the mediator's task is finalized after all batches are
// attempted.
func (m *DBMediator) HandleDBInserts(ctx context.Context, batches []store.Batch, logTask bool) {
	log := logger.FromContext(ctx)

	for _, batch := range batches {
		if batch.Table == GraphTable {
			m.HandleConflicts(ctx, batch.Table, batch.Rows)
			continue
		}

		if err := m.db.InsertMany(ctx, batch.Table, batch.Rows); err != nil {
			log.Error("batch insert failed",
				"table", batch.Table,
				"task_id", m.TaskID(),
				"error", err)
			m.RecordError(err)
			continue
		}

		log.Debug("batch applied", "table", batch.Table, "task_id", m.TaskID())
	}

	if logTask {
		m.Finalize(ctx)
	}
}

// InsertRow performs a single-row insert with no conflict tolerance.
// Failure is recorded, not raised.
func (m *DBMediator) InsertRow(ctx context.Context, table string, row store.Row) {
	if err := m.db.InsertRow(ctx, table, row); err != nil {
		logger.FromContext(ctx).Error("row insert failed",
			"table", table,
			"task_id", m.TaskID(),
			"error", err)
		m.RecordError(err)
	}
}
