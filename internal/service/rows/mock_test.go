package rows

import (
	"context"
	"database/sql"
	"strings"

	"flexidb/internal/db"
)

type staticResolver struct {
	h *db.Handle
}

func (r staticResolver) Resolve(context.Context, string) (*db.Handle, error) { return r.h, nil }

// skewConn reports one more affected row than a DELETE really removed.
type skewConn struct {
	db.Conn
}

func (c skewConn) BeginTx(ctx context.Context, opts *sql.TxOptions) (db.Tx, error) {
	tx, err := c.Conn.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return skewTx{tx}, nil
}

type skewTx struct {
	db.Tx
}

func (t skewTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := t.Tx.ExecContext(ctx, query, args...)
	if err != nil || !strings.HasPrefix(query, "DELETE") {
		return res, err
	}
	return skewResult{res}, nil
}

type skewResult struct {
	sql.Result
}

func (r skewResult) RowsAffected() (int64, error) {
	n, err := r.Result.RowsAffected()
	return n + 1, err
}
