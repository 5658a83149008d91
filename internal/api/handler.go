// Package api serves the schema and row mutation engine over HTTP/JSON.
package api

import (
	"context"
	"log/slog"

	"flexidb/internal/domain"
)

// SchemaService is the column definition surface the handlers call.
type SchemaService interface {
	AddColumn(ctx context.Context, req domain.AddColumnRequest) error
	ModifyColumn(ctx context.Context, req domain.ModifyColumnRequest) error
	DropColumn(ctx context.Context, req domain.DropColumnRequest) (*domain.DropColumnResult, error)
	GetColumns(ctx context.Context, req domain.GetColumnsRequest) (*domain.ColumnsResult, error)
	History(ctx context.Context, req domain.ColumnHistoryRequest) (*domain.HistoryPage, error)
}

// RowService is the row CRUD surface the handlers call.
type RowService interface {
	InsertRows(ctx context.Context, req domain.InsertRowsRequest) (*domain.InsertResult, error)
	GetRows(ctx context.Context, req domain.GetRowsRequest) (*domain.RowsPage, error)
	UpdateRows(ctx context.Context, req domain.UpdateRowsRequest) (*domain.UpdateResult, error)
	DeleteRows(ctx context.Context, req domain.DeleteRowsRequest) (*domain.DeleteResult, error)
}

// AuditService lists the operation audit log.
type AuditService interface {
	List(ctx context.Context, filter domain.AuditFilter) (*domain.AuditPage, error)
}

// Handler implements every /v1 endpoint.
type Handler struct {
	schema SchemaService
	rows   RowService
	audit  AuditService
	logger *slog.Logger

	// redactStoreErrors drops driver error text from 5xx responses.
	redactStoreErrors bool
}

// NewHandler creates a Handler. With redactStoreErrors set, infrastructure
// failures only carry their safe message.
func NewHandler(schema SchemaService, rows RowService, audit AuditService, logger *slog.Logger, redactStoreErrors bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		schema:            schema,
		rows:              rows,
		audit:             audit,
		logger:            logger.With("component", "api"),
		redactStoreErrors: redactStoreErrors,
	}
}
