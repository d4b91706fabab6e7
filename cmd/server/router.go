package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hermesapp/hermes-api/internal/api"
	apimiddleware "github.com/hermesapp/hermes-api/internal/api/middleware"
)

// setupRouter wires all routes and middleware onto a chi router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.taskStore, app.verifier)
	ingestHandler := api.NewIngestHandler(app.dispatcher)
	taskHandler := api.NewTaskHandler(app.taskStore)
	healthHandler := api.NewHealthHandler(app.db)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.verifier, app.userStore)

	r.Route("/v1", func(r chi.Router) {
		// Login is the only route that accepts unknown identities.
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireToken)
			r.Put("/auth/credentials", authHandler.UpdateCredentials)
			r.Post("/ingest", ingestHandler.Ingest)
			r.Get("/tasks/{id}", taskHandler.GetTask)
		})
	})

	r.Get("/healthz", healthHandler.Health)

	return r
}
