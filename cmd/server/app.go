package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hermesapp/hermes-api/internal/config"
	"github.com/hermesapp/hermes-api/internal/platform/logger"
	"github.com/hermesapp/hermes-api/internal/platform/postgres"
	"github.com/hermesapp/hermes-api/internal/service/auth"
	"github.com/hermesapp/hermes-api/internal/store"
	"github.com/hermesapp/hermes-api/internal/task"
)

// application bundles every long-lived dependency the server needs.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore
	accessor  store.Accessor
	verifier  auth.TokenVerifier

	queue      *task.Queue
	workerPool *task.WorkerPool
	dispatcher *task.Dispatcher
}

// newApplication loads configuration and wires the full dependency
// graph: logging, database, migrations, stores, token verification,
// and the background task pipeline.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"queue_size", cfg.Task.QueueSize,
		"worker_count", cfg.Task.WorkerCount)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, appLogger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	verifier, err := auth.NewTokenVerifier(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	queue := task.NewQueue(cfg.Task.QueueSize, appLogger)
	pool := task.NewWorkerPool(queue, cfg.Task.WorkerCount, appLogger)

	taskStore := postgres.NewTaskStore(db)
	accessor := postgres.NewAccessor(db, postgres.DefaultRegistry())

	dispatcher := task.NewDispatcher(queue, taskStore, accessor, appLogger)
	dispatcher.SetPollInterval(time.Duration(cfg.Task.WaitPollIntervalMS) * time.Millisecond)

	app := &application{
		config:     cfg,
		logger:     appLogger,
		db:         db,
		userStore:  postgres.NewUserStore(db),
		taskStore:  taskStore,
		accessor:   accessor,
		verifier:   verifier,
		queue:      queue,
		workerPool: pool,
		dispatcher: dispatcher,
	}
	return app, nil
}

// run starts the worker pool and the HTTP server, blocking until
// shutdown completes.
func (app *application) run() error {
	app.workerPool.Start()
	return app.startHTTPServer(app.setupRouter())
}

// cleanup releases resources in reverse dependency order. The worker
// pool drains before the database closes so in-flight jobs can still
// write their task rows.
func (app *application) cleanup() {
	if app.workerPool != nil {
		app.workerPool.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
}

// setupDatabase opens the connection pool and verifies reachability.
func setupDatabase(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := pingDatabase(db); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")
	return db, nil
}
