package repository

import (
	"context"
	"database/sql"
	"fmt"

	"flexidb/internal/db"
	"flexidb/internal/db/dialect"
	"flexidb/internal/domain"
)

// ChangeHistoryRepo appends to and reads column_change_history in the
// target database, creating the table on first use.
type ChangeHistoryRepo struct{}

// NewChangeHistoryRepo returns a ChangeHistoryRepo.
func NewChangeHistoryRepo() *ChangeHistoryRepo { return &ChangeHistoryRepo{} }

// Ensure creates the history table if it does not exist.
func (r *ChangeHistoryRepo) Ensure(ctx context.Context, h *db.Handle) error {
	if err := execAll(ctx, h.Conn, h.Dialect.HistoryTableDDL()); err != nil {
		return domain.ErrStore(err, "Failed to create column history table.")
	}
	return nil
}

// Append writes one change record.
func (r *ChangeHistoryRepo) Append(ctx context.Context, h *db.Handle, rec *domain.ColumnChangeRecord) error {
	_, err := h.Conn.ExecContext(ctx, `INSERT INTO `+dialect.HistoryTable+` (
		db_name, table_name, column_name, old_type, new_type, action,
		old_nullability, new_nullability, old_default, new_default,
		old_comment, new_comment, renamed_to
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Database, rec.Table, rec.Column,
		nullableString(rec.OldType), nullableString(rec.NewType), string(rec.Action),
		nullableString(rec.OldNullable), nullableString(rec.NewNullable),
		nullableString(rec.OldDefault), nullableString(rec.NewDefault),
		nullableString(rec.OldComment), nullableString(rec.NewComment),
		nullableString(rec.RenamedTo),
	)
	if err != nil {
		return domain.ErrStore(err, "Failed to log column change.")
	}
	return nil
}

// List returns a page of records for table, newest first. A database
// without a history table has no records.
func (r *ChangeHistoryRepo) List(ctx context.Context, h *db.Handle, table string, page domain.PageRequest) ([]domain.ColumnChangeRecord, int64, error) {
	ok, err := h.Dialect.TableExists(ctx, h.Conn, dialect.HistoryTable)
	if err != nil {
		return nil, 0, domain.ErrStore(err, "Failed to read column history.")
	}
	if !ok {
		return []domain.ColumnChangeRecord{}, 0, nil
	}

	var total int64
	if err := h.Conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+dialect.HistoryTable+` WHERE table_name = ?`, table).Scan(&total); err != nil {
		return nil, 0, domain.ErrStore(err, "Failed to read column history.")
	}

	rows, err := h.Conn.QueryContext(ctx, `SELECT id, db_name, table_name, column_name, old_type, new_type, action,
		old_nullability, new_nullability, old_default, new_default, old_comment, new_comment, renamed_to, changed_at
		FROM `+dialect.HistoryTable+`
		WHERE table_name = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?`, table, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, domain.ErrStore(err, "Failed to read column history.")
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.ColumnChangeRecord{}
	for rows.Next() {
		rec, err := scanChangeRecord(rows)
		if err != nil {
			return nil, 0, domain.ErrStore(err, "Failed to read column history.")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.ErrStore(err, "Failed to read column history.")
	}
	return out, total, nil
}

func scanChangeRecord(rows *sql.Rows) (domain.ColumnChangeRecord, error) {
	var (
		rec                                    domain.ColumnChangeRecord
		dbName, table, column, action          sql.NullString
		oldType, newType, oldNull, newNull     sql.NullString
		oldDefault, newDefault, oldCmt, newCmt sql.NullString
		renamed                                sql.NullString
		changedAt                              sql.NullTime
	)
	if err := rows.Scan(&rec.ID, &dbName, &table, &column, &oldType, &newType, &action,
		&oldNull, &newNull, &oldDefault, &newDefault, &oldCmt, &newCmt, &renamed, &changedAt); err != nil {
		return rec, fmt.Errorf("scan change record: %w", err)
	}
	rec.Database = dbName.String
	rec.Table = table.String
	rec.Column = column.String
	rec.Action = domain.ChangeAction(action.String)
	rec.OldType = stringPtr(oldType)
	rec.NewType = stringPtr(newType)
	rec.OldNullable = stringPtr(oldNull)
	rec.NewNullable = stringPtr(newNull)
	rec.OldDefault = stringPtr(oldDefault)
	rec.NewDefault = stringPtr(newDefault)
	rec.OldComment = stringPtr(oldCmt)
	rec.NewComment = stringPtr(newCmt)
	rec.RenamedTo = stringPtr(renamed)
	if changedAt.Valid {
		rec.ChangedAt = changedAt.Time
	}
	return rec, nil
}
