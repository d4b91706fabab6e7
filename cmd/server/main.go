// Package main implements the entry point for the Hermes API server,
// which resolves token-based identities to users and persists row
// batches through a tracked background task pipeline.
package main

import (
	"log"
)

func main() {
	app, err := newApplication()
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if err := app.run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
