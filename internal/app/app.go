// Package app provides application-level wiring and dependency injection
// for the flexidb server.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"flexidb/internal/api"
	"flexidb/internal/backup"
	"flexidb/internal/config"
	"flexidb/internal/db"
	"flexidb/internal/db/repository"
	"flexidb/internal/middleware"
	"flexidb/internal/service/governance"
	"flexidb/internal/service/rows"
	"flexidb/internal/service/schema"
	"flexidb/internal/ui"
)

// Deps holds the external dependencies that main() must provide: the
// configuration, the migrated metastore pools and the root logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// Services groups the service pointers that the API handler and UI need.
type Services struct {
	Schema *schema.Service
	Rows   *rows.Service
	Audit  *governance.AuditService
}

// App holds the fully-wired application.
type App struct {
	Services Services
	Registry *db.Registry
	Backups  backup.Store
	// Pruner is nil unless local backups have a retention configured.
	Pruner *backup.Pruner

	validator middleware.TokenValidator
	cfg       *config.Config
	logger    *slog.Logger
}

// New wires the target registry, backup store, repositories and services.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := db.NewRegistry(db.Target{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		DataDir:         cfg.Database.DataDir,
		DefaultDatabase: cfg.Database.DefaultDatabase,
	}, logger.With("component", "registry"))
	if err != nil {
		return nil, fmt.Errorf("target registry: %w", err)
	}

	store, err := backup.New(ctx, cfg.Backup)
	if err != nil {
		_ = registry.Close()
		return nil, fmt.Errorf("backup store: %w", err)
	}

	var pruner *backup.Pruner
	if local, ok := store.(*backup.LocalStore); ok && cfg.Backup.Retention > 0 {
		pruner, err = backup.NewPruner(local, cfg.Backup.PruneSchedule, cfg.Backup.Retention, logger.With("component", "backup-pruner"))
		if err != nil {
			_ = registry.Close()
			return nil, fmt.Errorf("backup pruner: %w", err)
		}
	}

	validator, err := newValidator(ctx, cfg.Auth)
	if err != nil {
		_ = registry.Close()
		return nil, fmt.Errorf("auth: %w", err)
	}

	// === Repositories ===
	introspector := repository.NewIntrospector()
	historyRepo := repository.NewChangeHistoryRepo()
	deletedRepo := repository.NewDeletedRowsRepo()
	auditRepo := repository.NewAuditRepo(deps.WriteDB)
	catalogRepo := repository.NewBackupCatalogRepo(deps.WriteDB)

	// === Services ===
	schemaSvc := schema.NewService(
		registry, introspector, historyRepo, store, catalogRepo, auditRepo,
		logger.With("component", "schema"),
	)
	rowsSvc := rows.NewService(registry, introspector, deletedRepo, auditRepo, logger.With("component", "rows"))
	auditSvc := governance.NewAuditService(auditRepo)

	return &App{
		Services: Services{
			Schema: schemaSvc,
			Rows:   rowsSvc,
			Audit:  auditSvc,
		},
		Registry:  registry,
		Backups:   store,
		Pruner:    pruner,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// newValidator picks OIDC when an issuer is configured, else HS256 when a
// secret is set. It returns nil when authentication is disabled.
func newValidator(ctx context.Context, auth config.AuthConfig) (middleware.TokenValidator, error) {
	switch {
	case auth.IssuerURL != "":
		return middleware.NewOIDCValidator(ctx, auth.IssuerURL, auth.Audience)
	case auth.JWTSecret != "":
		return middleware.NewHS256Validator(auth.JWTSecret)
	default:
		return nil, nil
	}
}

// Router builds the HTTP handler serving the API, the OpenAPI document and
// the UI. ctx bounds background goroutines started by the middleware.
func (a *App) Router(ctx context.Context) (http.Handler, error) {
	doc, err := api.LoadOpenAPI(ctx)
	if err != nil {
		return nil, fmt.Errorf("load openapi: %w", err)
	}

	handler := api.NewHandler(a.Services.Schema, a.Services.Rows, a.Services.Audit, a.logger, a.cfg.RedactStoreErrors)
	return api.NewRouter(ctx, handler, doc, api.RouterConfig{
		CORSAllowedOrigins: a.cfg.CORSAllowedOrigins,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: a.cfg.RateLimitRPS,
			Burst:             a.cfg.RateLimitBurst,
		},
		Validator: a.validator,
		UI:        ui.NewHandler(a.Services.Schema, a.Services.Audit).Routes(),
		Logger:    a.logger.With("component", "http"),
	}), nil
}

// Close stops the pruner and releases target connections and the backup
// store client.
func (a *App) Close() error {
	if a.Pruner != nil {
		a.Pruner.Stop()
	}
	var errs []error
	if err := a.Registry.Close(); err != nil {
		errs = append(errs, err)
	}
	if c, ok := a.Backups.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
