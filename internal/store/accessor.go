package store

import "context"

// Accessor is the generic row-level query surface used by the DB
// mediator for arbitrary batch targets. Table names are logical: every
// call resolves the name through a fixed TableRegistry, so callers can
// never address a table the registry does not know about.
type Accessor interface {
	// InsertRow inserts a single row with no conflict tolerance.
	InsertRow(ctx context.Context, table string, row Row) error

	// InsertIgnoreConflict inserts a row, silently skipping it when the
	// table's registered conflict column already holds the value
	// ("insert or ignore", not "insert or update"). Reports whether the
	// row was actually inserted.
	InsertIgnoreConflict(ctx context.Context, table string, row Row) (bool, error)

	// InsertMany bulk-inserts all rows produced by src into table.
	InsertMany(ctx context.Context, table string, src RowSource) error

	// FetchOne returns the first row where column equals value, or
	// ErrNotFound if no row matches.
	FetchOne(ctx context.Context, table, column string, value any) (Row, error)
}

// TableSpec describes one registered table: the column order used for
// inserts and, where conflict-tolerant inserts are allowed, the
// uniqueness column those inserts key on.
type TableSpec struct {
	// Columns is the fixed insert column order.
	Columns []string

	// ConflictColumn names the unique column used by
	// InsertIgnoreConflict. Empty means the table does not accept
	// conflict-tolerant inserts.
	ConflictColumn string
}

// TableRegistry is the fixed mapping from logical table name to its
// spec. Built once at startup; read-only afterwards.
type TableRegistry map[string]TableSpec

// Lookup returns the spec for a logical table name.
func (r TableRegistry) Lookup(table string) (TableSpec, bool) {
	spec, ok := r[table]
	return spec, ok
}
