// Package task runs deferred, already-constructed units of mediated
// work off the request path: a bounded FIFO queue whose producers block
// when it is full, a fixed pool of workers that drain it, and a
// dispatcher that packages DB mediator invocations into queue jobs.
package task
