package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/geohazard/service/internal/catalog"
	"github.com/geohazard/service/internal/config"
	"github.com/geohazard/service/internal/history"
	"github.com/geohazard/service/internal/ingest"
	appMiddleware "github.com/geohazard/service/internal/middleware"
	"github.com/geohazard/service/internal/pipeline"
	"github.com/geohazard/service/internal/response"
	"github.com/geohazard/service/internal/storage"

	_ "github.com/geohazard/service/docs/swagger"
)

const healthTimeout = 5 * time.Second

type app struct {
	cfg      *config.Config
	store    storage.Store
	registry *prometheus.Registry

	ingest   *ingest.Handler
	catalog  *catalog.Handler
	pipeline *pipeline.Handler
	history  *history.Handler // nil without a database

	log *slog.Logger
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(a.log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", a.health)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))

	// Swagger UI: available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public read endpoints
		r.Get("/folders", a.catalog.ListFolders)
		r.Get("/files/{folder}", a.catalog.ListFiles)
		r.Get("/pipeline/status", a.pipeline.Status)
		r.Get("/pipeline/logs", a.pipeline.Logs)

		// Admin endpoints
		r.Group(func(r chi.Router) {
			if a.cfg.RequireAuth {
				r.Use(appMiddleware.RequireAuth(a.cfg.JWTSecret))
				r.Use(appMiddleware.RequireRole(appMiddleware.RoleAdmin))
			}
			r.Post("/upload", a.ingest.Upload)
			r.Post("/pipeline/retry", a.pipeline.Retry)
			if a.history != nil {
				r.Get("/ingestions", a.history.List)
			}
		})
	})

	return r
}

type healthResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	FilesCount int    `json:"filesCount"`
	Error      string `json:"error,omitempty"`
}

// health pings the store and lists the bucket root.
func (a *app) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	var entries []storage.Entry
	err := a.store.Ping(ctx)
	if err == nil {
		entries, err = a.store.List(ctx, "")
	}
	if err != nil {
		a.log.Warn("health check failed", "error", err)
		response.JSON(w, http.StatusInternalServerError, healthResponse{
			Message: "Storage connection failed",
			Error:   err.Error(),
		})
		return
	}
	response.JSON(w, http.StatusOK, healthResponse{
		Success:    true,
		Message:    "Storage connection successful",
		FilesCount: len(entries),
	})
}
