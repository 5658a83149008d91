package rows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"flexidb/internal/db"
	"flexidb/internal/domain"
)

// DeleteRows removes the rows whose column value is in Values. Inside one
// transaction every matching row is snapshotted as JSON into
// deleted_<table>, then deleted; the commit only happens when the DELETE
// removed exactly the counted rows.
func (s *Service) DeleteRows(ctx context.Context, req domain.DeleteRowsRequest) (_ *domain.DeleteResult, err error) {
	start := time.Now()
	database := req.Database
	var deleted int64
	defer func() {
		s.record(ctx, domain.ActionDeleteRows, database, req.Table, start, fmt.Sprintf("deleted %d row(s)", deleted), err)
	}()

	if strings.TrimSpace(req.Column) == "" {
		return nil, domain.ErrValidation("Missing required field: column")
	}
	if len(req.Values) == 0 {
		return nil, domain.ErrValidation("Missing required field: values")
	}
	if req.Limit != nil && *req.Limit < 1 {
		return nil, domain.ErrValidation("Invalid limit.")
	}
	limit := req.EffectiveLimit()
	if len(req.Values) > limit {
		return nil, domain.ErrValidation("Too many values: %d given, limit is %d.", len(req.Values), limit)
	}

	h, ts, err := s.open(ctx, req.Database, req.Table)
	if err != nil {
		return nil, err
	}
	database = h.Database
	col, err := lookup(ts, req.Column)
	if err != nil {
		return nil, err
	}

	args := make([]any, len(req.Values))
	for i, raw := range req.Values {
		args[i] = domain.FilterValue(col, raw).Arg()
	}
	table := h.Dialect.QuoteIdent(ts.Table)
	where := fmt.Sprintf(" WHERE %s IN (%s)", h.Dialect.QuoteIdent(col.Name), placeholders(len(args)))

	count, err := countRows(ctx, h.Conn, h.Dialect, ts.Table, where, args)
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to count matching records.")
	}
	if count == 0 {
		return nil, domain.ErrNotFound("No matching records found to delete.")
	}
	if count > int64(limit) {
		return nil, domain.ErrPolicy("Aborted: Trying to delete %d rows, limit is %d.", count, limit)
	}

	// DDL commits implicitly on MySQL, so the log table is created before
	// the transaction starts.
	logTable, err := s.deleted.Ensure(ctx, h.Conn, h.Dialect, ts.Table)
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to create deletion log table.")
	}

	tx, err := h.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to start transaction.")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.snapshot(ctx, tx, h, table, where, args, logTable); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM "+table+where, args...)
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to delete records.")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to delete records.")
	}
	if affected != count {
		s.logger.Error("delete count mismatch, rolling back",
			"database", h.Database, "table", ts.Table, "expected", count, "affected", affected)
		return nil, domain.ErrPolicy("Mismatch after deletion. Aborting to prevent data loss.")
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.ErrStore(err, "Failed to commit deletion.")
	}
	committed = true
	deleted = affected

	s.logger.Info("rows deleted", "database", h.Database, "table", ts.Table, "log_table", logTable, "count", deleted)
	return &domain.DeleteResult{Table: ts.Table, LogTable: logTable, DeletedCount: deleted}, nil
}

// snapshot copies the rows about to be deleted into logTable as JSON.
func (s *Service) snapshot(ctx context.Context, tx db.Tx, h *db.Handle, table, where string, args []any, logTable string) error {
	rs, err := tx.QueryContext(ctx, "SELECT * FROM "+table+where, args...)
	if err != nil {
		return domain.ErrStore(err, "Failed to read records to delete.")
	}
	victims, err := db.ScanRows(rs)
	_ = rs.Close()
	if err != nil {
		return domain.ErrStore(err, "Failed to read records to delete.")
	}

	w, err := s.deleted.Writer(ctx, tx, h.Dialect, logTable)
	if err != nil {
		return domain.ErrStore(err, "Failed to log deleted records.")
	}
	defer w.Close() //nolint:errcheck

	for _, row := range victims {
		data, err := json.Marshal(row)
		if err != nil {
			return domain.ErrStore(err, "Failed to log deleted records.")
		}
		if err := w.Write(ctx, data); err != nil {
			return domain.ErrStore(err, "Failed to log deleted records.")
		}
	}
	return nil
}
