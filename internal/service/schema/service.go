// Package schema implements column-level structural changes: add, modify
// and drop columns, with a change history kept next to the data and a table
// definition backup taken before every drop.
package schema

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"flexidb/internal/backup"
	"flexidb/internal/db"
	"flexidb/internal/ddl"
	"flexidb/internal/domain"
	"flexidb/internal/service/auditutil"
)

// Resolver maps a database selector to an open handle.
type Resolver interface {
	Resolve(ctx context.Context, database string) (*db.Handle, error)
}

// Introspector reads live structure from a target database.
type Introspector interface {
	TableSchema(ctx context.Context, h *db.Handle, table string) (*domain.TableSchema, error)
	ColumnInForeignKey(ctx context.Context, h *db.Handle, table, column string) (bool, error)
	IndexExists(ctx context.Context, h *db.Handle, table, index string) (bool, error)
	TableDefinition(ctx context.Context, h *db.Handle, table string) (string, error)
}

// HistoryStore persists column change records in the target database.
type HistoryStore interface {
	Ensure(ctx context.Context, h *db.Handle) error
	Append(ctx context.Context, h *db.Handle, rec *domain.ColumnChangeRecord) error
	List(ctx context.Context, h *db.Handle, table string, page domain.PageRequest) ([]domain.ColumnChangeRecord, int64, error)
}

// BackupCatalog indexes stored backup artifacts.
type BackupCatalog interface {
	Record(ctx context.Context, database, table string, a *domain.BackupArtifact) error
}

// Service performs schema mutations against target databases.
type Service struct {
	resolver   Resolver
	introspect Introspector
	history    HistoryStore
	backups    backup.Store
	catalog    BackupCatalog
	audit      domain.AuditRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new Service. catalog and audit may be nil.
func NewService(
	resolver Resolver,
	introspect Introspector,
	history HistoryStore,
	backups backup.Store,
	catalog BackupCatalog,
	audit domain.AuditRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver:   resolver,
		introspect: introspect,
		history:    history,
		backups:    backups,
		catalog:    catalog,
		audit:      audit,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) record(ctx context.Context, action, database, table string, start time.Time, message string, err error) {
	auditutil.Record(ctx, s.audit, s.logger, action, database, table, start, message, err)
}

// schemaFor resolves the database and loads the table's live schema.
func (s *Service) schemaFor(ctx context.Context, database, table string) (*db.Handle, *domain.TableSchema, error) {
	h, err := s.resolver.Resolve(ctx, database)
	if err != nil {
		return nil, nil, err
	}
	ts, err := s.introspect.TableSchema(ctx, h, table)
	if err != nil {
		return nil, nil, err
	}
	return h, ts, nil
}

func (s *Service) exec(ctx context.Context, h *db.Handle, stmts []string, failure string) error {
	for _, stmt := range stmts {
		if _, err := h.Conn.ExecContext(ctx, stmt); err != nil {
			return domain.ErrStore(err, failure)
		}
	}
	return nil
}

// writeChange ensures the history table exists and appends rec.
func (s *Service) writeChange(ctx context.Context, h *db.Handle, rec *domain.ColumnChangeRecord) error {
	if err := s.history.Ensure(ctx, h); err != nil {
		return err
	}
	return s.history.Append(ctx, h, rec)
}

type field struct{ name, value string }

func required(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return domain.ErrValidation("Missing required field: %s", f.name)
		}
	}
	return nil
}

func validTable(table string) error {
	if !ddl.IsValidIdentifier(table) {
		return domain.ErrValidation("Invalid table name.")
	}
	return nil
}

func validColumn(column string) error {
	if !ddl.IsValidIdentifier(column) {
		return domain.ErrValidation("Invalid column name.")
	}
	return nil
}

func validType(typeName string) error {
	if !ddl.IsValidColumnType(strings.TrimSpace(typeName)) {
		return domain.ErrValidation("Invalid column type.")
	}
	return nil
}

func ptr(s string) *string { return &s }
