package repository

import (
	"context"
	"database/sql"
	"fmt"

	"flexidb/internal/db"
	"flexidb/internal/db/dialect"
	"flexidb/internal/domain"
)

// DeletedRowsRepo manages the deleted_<table> snapshot logs.
type DeletedRowsRepo struct{}

// NewDeletedRowsRepo returns a DeletedRowsRepo.
func NewDeletedRowsRepo() *DeletedRowsRepo { return &DeletedRowsRepo{} }

// Ensure creates the log table for table if needed and returns its name.
func (r *DeletedRowsRepo) Ensure(ctx context.Context, q db.Querier, d dialect.Dialect, table string) (string, error) {
	logTable := dialect.DeletedLogTable(table)
	if err := execAll(ctx, q, d.DeletedLogTableDDL(logTable)); err != nil {
		return "", fmt.Errorf("create %s: %w", logTable, err)
	}
	return logTable, nil
}

// Writer prepares the snapshot insert once for a batch.
func (r *DeletedRowsRepo) Writer(ctx context.Context, q db.Querier, d dialect.Dialect, logTable string) (*SnapshotWriter, error) {
	stmt, err := q.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (deleted_data) VALUES (?)", d.QuoteIdent(logTable)))
	if err != nil {
		return nil, fmt.Errorf("prepare snapshot insert: %w", err)
	}
	return &SnapshotWriter{stmt: stmt}, nil
}

// List returns the most recent snapshots from logTable.
func (r *DeletedRowsRepo) List(ctx context.Context, h *db.Handle, logTable string, limit int) ([]domain.DeletedRowRecord, error) {
	rows, err := h.Conn.QueryContext(ctx, fmt.Sprintf(
		"SELECT id, deleted_data, deleted_at FROM %s ORDER BY id DESC LIMIT ?", h.Dialect.QuoteIdent(logTable)), limit)
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to read deleted rows.")
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.DeletedRowRecord
	for rows.Next() {
		var (
			rec domain.DeletedRowRecord
			at  sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &rec.Data, &at); err != nil {
			return nil, domain.ErrStore(err, "Failed to read deleted rows.")
		}
		rec.DeletedAt = at.Time
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SnapshotWriter inserts JSON row snapshots through one prepared statement.
type SnapshotWriter struct {
	stmt *sql.Stmt
}

// Write stores one snapshot.
func (w *SnapshotWriter) Write(ctx context.Context, snapshot []byte) error {
	if _, err := w.stmt.ExecContext(ctx, string(snapshot)); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Close releases the prepared statement.
func (w *SnapshotWriter) Close() error { return w.stmt.Close() }
