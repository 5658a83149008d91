package rows

import (
	"context"
	"fmt"

	"flexidb/internal/db"
	"flexidb/internal/domain"
)

// GetRows returns one page of rows, optionally projected to a single column
// and filtered by column equality. A column of "*" selects every column.
func (s *Service) GetRows(ctx context.Context, req domain.GetRowsRequest) (*domain.RowsPage, error) {
	if !req.Page.Valid() {
		return nil, domain.ErrValidation("Invalid pagination parameters.")
	}
	h, ts, err := s.open(ctx, req.Database, req.Table)
	if err != nil {
		return nil, err
	}

	selectList := "*"
	if req.Column != "" && req.Column != "*" {
		col, err := lookup(ts, req.Column)
		if err != nil {
			return nil, err
		}
		selectList = h.Dialect.QuoteIdent(col.Name)
	}
	filters, err := bindAll(ts, req.Condition)
	if err != nil {
		return nil, err
	}
	where, args := whereClause(h.Dialect, filters)

	total, err := countRows(ctx, h.Conn, h.Dialect, ts.Table, where, args)
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to retrieve data.")
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s LIMIT ? OFFSET ?", selectList, h.Dialect.QuoteIdent(ts.Table), where)
	rs, err := h.Conn.QueryContext(ctx, query, append(args, req.Page.Limit, req.Page.Offset())...)
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to retrieve data.")
	}
	defer rs.Close() //nolint:errcheck

	out, err := db.ScanRows(rs)
	if err != nil {
		return nil, domain.ErrStore(err, "Failed to retrieve data.")
	}
	return &domain.RowsPage{Rows: out, Pagination: domain.NewPagination(req.Page, total)}, nil
}
