// Package rows implements row-level operations on arbitrary tables: paged
// reads, validated inserts and updates, and deletes that snapshot every
// removed row into a deleted_<table> log inside the same transaction.
package rows

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"flexidb/internal/db"
	"flexidb/internal/db/dialect"
	"flexidb/internal/db/repository"
	"flexidb/internal/ddl"
	"flexidb/internal/domain"
	"flexidb/internal/service/auditutil"
)

// Resolver maps a database selector to an open handle.
type Resolver interface {
	Resolve(ctx context.Context, database string) (*db.Handle, error)
}

// SchemaReader loads a table's live columns.
type SchemaReader interface {
	TableSchema(ctx context.Context, h *db.Handle, table string) (*domain.TableSchema, error)
}

// DeletedLog manages the per-table deleted row logs.
type DeletedLog interface {
	Ensure(ctx context.Context, q db.Querier, d dialect.Dialect, table string) (string, error)
	Writer(ctx context.Context, q db.Querier, d dialect.Dialect, logTable string) (*repository.SnapshotWriter, error)
}

// Service runs row operations against target databases.
type Service struct {
	resolver Resolver
	schema   SchemaReader
	deleted  DeletedLog
	audit    domain.AuditRepository
	logger   *slog.Logger
}

// NewService creates a new Service. audit may be nil.
func NewService(resolver Resolver, schema SchemaReader, deleted DeletedLog, audit domain.AuditRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver: resolver,
		schema:   schema,
		deleted:  deleted,
		audit:    audit,
		logger:   logger,
	}
}

func (s *Service) record(ctx context.Context, action, database, table string, start time.Time, message string, err error) {
	auditutil.Record(ctx, s.audit, s.logger, action, database, table, start, message, err)
}

func (s *Service) open(ctx context.Context, database, table string) (*db.Handle, *domain.TableSchema, error) {
	if strings.TrimSpace(table) == "" {
		return nil, nil, domain.ErrValidation("Missing required field: table")
	}
	if !ddl.IsValidIdentifier(table) {
		return nil, nil, domain.ErrValidation("Invalid table name.")
	}
	h, err := s.resolver.Resolve(ctx, database)
	if err != nil {
		return nil, nil, err
	}
	ts, err := s.schema.TableSchema(ctx, h, table)
	if err != nil {
		return nil, nil, err
	}
	return h, ts, nil
}

// lookup returns the declared column for a caller-supplied key.
func lookup(ts *domain.TableSchema, key string) (domain.ColumnDescriptor, error) {
	if !ddl.IsValidIdentifier(key) {
		return domain.ColumnDescriptor{}, domain.ErrValidation("Invalid column name.")
	}
	col, ok := ts.Column(key)
	if !ok {
		return domain.ColumnDescriptor{}, domain.ErrValidation("Column `%s` does not exist in `%s`.", key, ts.Table)
	}
	return col, nil
}

// binding pairs a declared column with a caller-supplied value.
type binding struct {
	col domain.ColumnDescriptor
	raw any
}

// bindAll resolves every key of m against ts and returns the bindings in
// table column order.
func bindAll(ts *domain.TableSchema, m map[string]any) ([]binding, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	position := make(map[string]int, len(ts.Columns))
	for i, c := range ts.Columns {
		position[c.Name] = i
	}

	out := make([]binding, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range keys {
		col, err := lookup(ts, k)
		if err != nil {
			return nil, err
		}
		if seen[col.Name] {
			return nil, domain.ErrValidation("Column `%s` is given more than once.", col.Name)
		}
		seen[col.Name] = true
		out = append(out, binding{col: col, raw: m[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return position[out[i].col.Name] < position[out[j].col.Name]
	})
	return out, nil
}

// whereClause renders equality filters joined with AND. Null filter values
// compare with IS NULL.
func whereClause(d dialect.Dialect, filters []binding) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		v := domain.FilterValue(f.col, f.raw)
		if v.Kind == domain.KindNull {
			parts = append(parts, d.QuoteIdent(f.col.Name)+" IS NULL")
			continue
		}
		parts = append(parts, d.QuoteIdent(f.col.Name)+" = ?")
		args = append(args, v.Arg())
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func countRows(ctx context.Context, q db.Querier, d dialect.Dialect, table, where string, args []any) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+d.QuoteIdent(table)+where, args...).Scan(&n)
	return n, err
}
