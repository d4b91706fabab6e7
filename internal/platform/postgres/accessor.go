package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hermesapp/hermes-api/internal/platform/logger"
	"github.com/hermesapp/hermes-api/internal/store"
)

// Accessor implements store.Accessor against registered tables. All SQL
// identifiers come from the registry, never from caller input, so a
// logical table name can only ever address a table the registry knows.
type Accessor struct {
	db       store.DBTX
	registry store.TableRegistry
}

// Ensure Accessor implements store.Accessor.
var _ store.Accessor = (*Accessor)(nil)

// NewAccessor creates an Accessor over db for the given registry.
func NewAccessor(db store.DBTX, registry store.TableRegistry) *Accessor {
	return &Accessor{db: db, registry: registry}
}

// DefaultRegistry returns the fixed table registry for the Hermes
// schema: the core users/tasks tables plus the batch targets the DB
// mediator writes. graph_nodes is the conflict-tolerant table, keyed
// on email.
func DefaultRegistry() store.TableRegistry {
	return store.TableRegistry{
		"users": {
			Columns: []string{
				"id", "email", "name", "permission_level", "verified",
				"phone_number", "last_fetch", "token", "refresh_token",
				"token_uri", "client_id", "client_secret", "scopes",
			},
			ConflictColumn: "email",
		},
		"tasks": {
			Columns: []string{
				"id", "owner", "task_type", "time_start", "time_finished",
				"error", "success",
			},
		},
		"graph_nodes": {
			Columns:        []string{"id", "email", "name", "node_type", "weight"},
			ConflictColumn: "email",
		},
		"entities": {
			Columns: []string{"id", "owner", "label", "payload", "created_at"},
		},
	}
}

// lookup resolves a logical table name, mapping unknown names to
// store.ErrUnknownTable.
func (a *Accessor) lookup(table string) (store.TableSpec, error) {
	spec, ok := a.registry.Lookup(table)
	if !ok {
		return store.TableSpec{}, fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	return spec, nil
}

// rowArgs projects row onto the spec's column order. Columns absent
// from the row insert as NULL.
func rowArgs(spec store.TableSpec, row store.Row) []any {
	args := make([]any, len(spec.Columns))
	for i, col := range spec.Columns {
		if v, ok := row[col]; ok {
			args[i] = v
		}
	}
	return args
}

// placeholders renders "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// InsertRow inserts a single row with no conflict tolerance.
func (a *Accessor) InsertRow(ctx context.Context, table string, row store.Row) error {
	log := logger.FromContext(ctx)

	spec, err := a.lookup(table)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(spec.Columns, ", "),
		placeholders(1, len(spec.Columns)),
	)

	if _, err := a.db.ExecContext(ctx, query, rowArgs(spec, row)...); err != nil {
		log.Error("failed to insert row",
			"table", table,
			"error", err)
		return store.NewStorageError(table, "insert", MapError(err))
	}

	return nil
}

// InsertIgnoreConflict inserts a row with ON CONFLICT DO NOTHING on the
// table's registered conflict column. Reports whether a row was
// actually written: false means an existing row already held the
// conflict key, which is a designed outcome, not an error.
func (a *Accessor) InsertIgnoreConflict(ctx context.Context, table string, row store.Row) (bool, error) {
	log := logger.FromContext(ctx)

	spec, err := a.lookup(table)
	if err != nil {
		return false, err
	}
	if spec.ConflictColumn == "" {
		return false, fmt.Errorf("%w: %s has no conflict column", store.ErrUnknownTable, table)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		table,
		strings.Join(spec.Columns, ", "),
		placeholders(1, len(spec.Columns)),
		spec.ConflictColumn,
	)

	result, err := a.db.ExecContext(ctx, query, rowArgs(spec, row)...)
	if err != nil {
		log.Error("failed conflict-tolerant insert",
			"table", table,
			"error", err)
		return false, store.NewStorageError(table, "insert", MapError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStorageError(table, "insert", err)
	}

	return affected > 0, nil
}

// InsertMany drains src and bulk-inserts every row it produced in a
// single statement. An empty source is a no-op.
func (a *Accessor) InsertMany(ctx context.Context, table string, src store.RowSource) error {
	log := logger.FromContext(ctx)

	spec, err := a.lookup(table)
	if err != nil {
		return err
	}

	var (
		tuples []string
		args   []any
	)
	for row, ok := src.Next(); ok; row, ok = src.Next() {
		tuples = append(tuples, "("+placeholders(len(args)+1, len(spec.Columns))+")")
		args = append(args, rowArgs(spec, row)...)
	}
	if len(tuples) == 0 {
		return nil
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table,
		strings.Join(spec.Columns, ", "),
		strings.Join(tuples, ", "),
	)

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed bulk insert",
			"table", table,
			"rows", len(tuples),
			"error", err)
		return store.NewStorageError(table, "insert", MapError(err))
	}

	log.Debug("bulk insert applied", "table", table, "rows", len(tuples))
	return nil
}

// FetchOne returns the first row where column equals value. The column
// must be registered for the table.
func (a *Accessor) FetchOne(ctx context.Context, table, column string, value any) (store.Row, error) {
	log := logger.FromContext(ctx)

	spec, err := a.lookup(table)
	if err != nil {
		return nil, err
	}

	known := false
	for _, col := range spec.Columns {
		if col == column {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: column %s not registered for %s", store.ErrUnknownTable, column, table)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 LIMIT 1",
		strings.Join(spec.Columns, ", "),
		table,
		column,
	)

	dest := make([]any, len(spec.Columns))
	ptrs := make([]any, len(spec.Columns))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	row := a.db.QueryRowContext(ctx, query, value)
	if err := row.Scan(ptrs...); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, table)
		}
		log.Error("failed to fetch row",
			"table", table,
			"column", column,
			"error", err)
		return nil, store.NewStorageError(table, "select", MapError(err))
	}

	out := make(store.Row, len(spec.Columns))
	for i, col := range spec.Columns {
		out[col] = dest[i]
	}

	return out, nil
}
