package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"flexidb/internal/domain"
)

// AuditRepo stores operation audit entries in the metastore.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns an AuditRepo over the metastore pool db.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

var _ domain.AuditRepository = (*AuditRepo)(nil)

func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO operation_audit
		(id, principal, action, db_name, table_name, status, message, request_id, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PrincipalName, e.Action, e.Database, e.Table, e.Status, e.Message,
		e.RequestID, e.DurationMs, e.CreatedAt.UTC().Format(metastoreLayout))
	return err
}

func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Action != nil {
		conds = append(conds, "action = ?")
		args = append(args, *filter.Action)
	}
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Table != nil {
		conds = append(conds, "table_name = ?")
		args = append(args, *filter.Table)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM operation_audit"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if !page.Valid() {
		page = domain.NewPageRequest(nil, nil)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, principal, action, db_name, table_name, status, message,
		request_id, duration_ms, created_at FROM operation_audit`+where+`
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close() //nolint:errcheck

	entries := []domain.AuditEntry{}
	for rows.Next() {
		var (
			e       domain.AuditEntry
			created string
		)
		if err := rows.Scan(&e.ID, &e.PrincipalName, &e.Action, &e.Database, &e.Table, &e.Status,
			&e.Message, &e.RequestID, &e.DurationMs, &created); err != nil {
			return nil, 0, err
		}
		e.CreatedAt = metastoreTime(created)
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
