// Package mediator implements the task mediation pattern: every unit
// of mediated work is wrapped by a transient coordinator that owns a
// durable task record, accumulates errors instead of raising them, and
// finalizes its record when the work completes.
//
// Base carries the shared lifecycle (register, record, finalize,
// tracked anonymous actions, cross-task waiting). AuthMediator resolves
// bearer tokens to users, creating them on first sight. DBMediator
// applies named batches of rows to registered tables with per-batch
// failure isolation and conflict tolerance for the graph table.
//
// A mediator instance is owned by exactly one goroutine for exactly one
// task; instances are never shared across concurrent operations.
package mediator
