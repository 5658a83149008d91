package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"flexidb/internal/middleware"
)

// RouterConfig holds the cross-cutting settings of the HTTP surface.
type RouterConfig struct {
	CORSAllowedOrigins []string
	// RateLimit is skipped when RequestsPerSecond is zero.
	RateLimit middleware.RateLimitConfig
	// Validator authenticates bearer tokens; nil runs every request as the
	// anonymous principal.
	Validator middleware.TokenValidator
	// UI is mounted at /ui when set.
	UI     http.Handler
	Logger *slog.Logger
}

// NewRouter builds the chi router serving /v1, /healthz, /openapi.json and
// the optional UI. ctx bounds the rate limiter's background sweeper.
func NewRouter(ctx context.Context, h *Handler, doc *openapi3.T, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger))
	r.Use(chimw.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{
				middleware.RequestIDHeader,
				"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After",
			},
			MaxAge: 300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusNotFound, false, "Endpoint not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusMethodNotAllowed, false, "Method not allowed.")
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeOK(w, http.StatusOK, "ok")
	})
	r.Get("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		body, err := json.Marshal(doc)
		if err != nil {
			writeEnvelope(w, http.StatusInternalServerError, false, "Failed to encode OpenAPI document.")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Validator, logger))
		if cfg.RateLimit.RequestsPerSecond > 0 {
			r.Use(middleware.RateLimiter(ctx, cfg.RateLimit))
		}

		r.Route("/v1", func(r chi.Router) {
			r.Route("/columns", func(r chi.Router) {
				r.Post("/create", h.CreateColumn)
				r.Post("/update", h.UpdateColumn)
				r.Post("/delete", h.DeleteColumn)
				r.Get("/get", h.GetColumns)
				r.Get("/history", h.ColumnHistory)
			})
			r.Route("/rows", func(r chi.Router) {
				r.Post("/create", h.CreateRows)
				r.Get("/get", h.GetRows)
				r.Post("/get", h.QueryRows)
				r.Post("/update", h.UpdateRows)
				r.Post("/delete", h.DeleteRows)
			})
			r.Get("/audit-logs", h.ListAuditLogs)
		})
		if cfg.UI != nil {
			r.Mount("/ui", cfg.UI)
		}
	})
	return r
}
