package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/memoryblocks/internal/api"
	apiMiddleware "github.com/phrazzld/memoryblocks/internal/api/middleware"
	"github.com/phrazzld/memoryblocks/internal/platform/metrics"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(app.metrics.Middleware)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	editorCfg := app.config.Editor
	handlers := api.Handlers{
		Blocks:   api.NewBlockHandler(editorCfg.MaxBlocks, app.metrics, app.logger),
		Memories: api.NewMemoryHandler(app.memoryService, editorCfg.MaxBlocks, app.metrics, app.logger),
		Uploads:  api.NewUploadHandler(editorCfg, app.metrics, app.logger),
	}
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		handlers.Routes(r)
	})

	r.Handle("/metrics", metrics.Handler())

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
