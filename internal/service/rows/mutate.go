package rows

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"flexidb/internal/domain"
)

// InsertRows validates every row against the live schema, then inserts them
// one by one through a single prepared statement. The first row decides the
// column list; later rows may leave columns out but not add new ones. There
// is no surrounding transaction: a store failure part way leaves the
// earlier rows in place.
func (s *Service) InsertRows(ctx context.Context, req domain.InsertRowsRequest) (_ *domain.InsertResult, err error) {
	start := time.Now()
	database := req.Database
	inserted := 0
	defer func() {
		s.record(ctx, domain.ActionInsertRows, database, req.Table, start, fmt.Sprintf("inserted %d row(s)", inserted), err)
	}()

	if len(req.Rows) == 0 || len(req.Rows[0]) == 0 {
		return nil, domain.ErrValidation("Missing required field: data")
	}
	h, ts, err := s.open(ctx, req.Database, req.Table)
	if err != nil {
		return nil, err
	}
	database = h.Database

	first, err := bindAll(ts, req.Rows[0])
	if err != nil {
		return nil, err
	}
	quoted := make([]string, len(first))
	for i, b := range first {
		quoted[i] = h.Dialect.QuoteIdent(b.col.Name)
	}

	argRows := make([][]any, len(req.Rows))
	for i, row := range req.Rows {
		args, err := rowArgs(ts, first, row, i+1)
		if err != nil {
			return nil, err
		}
		argRows[i] = args
	}

	stmt, err := h.Conn.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		h.Dialect.QuoteIdent(ts.Table), strings.Join(quoted, ", "), placeholders(len(quoted))))
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to insert rows.")
	}
	defer stmt.Close() //nolint:errcheck

	for _, args := range argRows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return nil, domain.ErrStore(err, "Failed to insert rows.")
		}
		inserted++
	}
	s.logger.Info("rows inserted", "database", h.Database, "table", ts.Table, "count", inserted)
	return &domain.InsertResult{Inserted: inserted}, nil
}

// rowArgs binds row against the columns named by the first row. A column
// the row leaves out is bound as NULL, so it must be nullable; a column the
// first row does not name is rejected.
func rowArgs(ts *domain.TableSchema, first []binding, row map[string]any, n int) ([]any, error) {
	bound, err := bindAll(ts, row)
	if err != nil {
		return nil, err
	}
	given := make(map[string]any, len(bound))
	for _, b := range bound {
		given[b.col.Name] = b.raw
	}
	for _, b := range bound {
		if !slices.ContainsFunc(first, func(f binding) bool { return f.col.Name == b.col.Name }) {
			return nil, domain.ErrValidation("Row %d has column `%s` which the first row does not.", n, b.col.Name)
		}
	}

	args := make([]any, len(first))
	for j, f := range first {
		raw, ok := given[f.col.Name]
		if !ok && !f.col.Nullable {
			return nil, domain.ErrValidation("Column `%s` cannot be null.", f.col.Name)
		}
		v, err := domain.CoerceValue(f.col, raw)
		if err != nil {
			return nil, err
		}
		args[j] = v.Arg()
	}
	return args, nil
}

// UpdateRows sets Data on every row matching Where. A where clause that
// matches nothing is reported as not found before any UPDATE is issued.
func (s *Service) UpdateRows(ctx context.Context, req domain.UpdateRowsRequest) (_ *domain.UpdateResult, err error) {
	start := time.Now()
	database := req.Database
	var affected int64
	defer func() {
		s.record(ctx, domain.ActionUpdateRows, database, req.Table, start, fmt.Sprintf("updated %d row(s)", affected), err)
	}()

	if len(req.Data) == 0 {
		return nil, domain.ErrValidation("Missing required field: data")
	}
	if len(req.Where) == 0 {
		return nil, domain.ErrValidation("Missing required field: where")
	}
	h, ts, err := s.open(ctx, req.Database, req.Table)
	if err != nil {
		return nil, err
	}
	database = h.Database

	sets, err := bindAll(ts, req.Data)
	if err != nil {
		return nil, err
	}
	filters, err := bindAll(ts, req.Where)
	if err != nil {
		return nil, err
	}

	assignments := make([]string, len(sets))
	args := make([]any, 0, len(sets)+len(filters))
	for i, b := range sets {
		v, err := domain.CoerceValue(b.col, b.raw)
		if err != nil {
			return nil, err
		}
		assignments[i] = h.Dialect.QuoteIdent(b.col.Name) + " = ?"
		args = append(args, v.Arg())
	}
	where, whereArgs := whereClause(h.Dialect, filters)

	matched, err := countRows(ctx, h.Conn, h.Dialect, ts.Table, where, whereArgs)
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to update record.")
	}
	if matched == 0 {
		return nil, domain.ErrNotFound("Record to update not found.")
	}

	res, err := h.Conn.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET %s%s",
		h.Dialect.QuoteIdent(ts.Table), strings.Join(assignments, ", "), where), append(args, whereArgs...)...)
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to update record.")
	}
	if affected, err = res.RowsAffected(); err != nil {
		return nil, domain.ErrStore(err, "Failed to update record.")
	}
	s.logger.Info("rows updated", "database", h.Database, "table", ts.Table, "count", affected)
	return &domain.UpdateResult{Affected: affected}, nil
}
