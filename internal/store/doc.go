// Package store defines the persistence interfaces consumed by the
// mediators and the task queue: typed stores for users and task
// records, a generic row accessor for batch inserts against registered
// tables, and the error taxonomy shared by every implementation.
//
// No component above this layer issues raw database calls; concrete
// PostgreSQL implementations live in internal/platform/postgres.
package store
