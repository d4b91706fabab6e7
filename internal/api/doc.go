// Package api handles incoming HTTP requests, routing, request
// validation, and response formatting. It translates HTTP concerns to
// mediator and store operations and never exposes raw internal errors
// to clients.
package api
