// Package postgres implements the store interfaces against PostgreSQL
// through database/sql and the pgx stdlib driver. It owns all SQL in
// the system: the typed user and task stores, the generic registered-
// table accessor used by the DB mediator, and the translation of
// driver errors into the store error taxonomy.
package postgres
