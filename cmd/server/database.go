package main

import (
	"context"
	"database/sql"
	"time"
)

// pingDatabase verifies the pool can reach the server within a short
// timeout.
func pingDatabase(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
