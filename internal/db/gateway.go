package db

import (
	"context"
	"database/sql"

	"flexidb/internal/db/dialect"
)

// Querier is the statement surface shared by connections and transactions.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Tx is an open transaction.
type Tx interface {
	Querier
	Commit() error
	Rollback() error
}

// Conn is a connection pool to one target database.
type Conn interface {
	Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

// Handle binds a target database name to its pool and dialect.
type Handle struct {
	Database string
	Conn     Conn
	Dialect  dialect.Dialect
}

// Wrap adapts a *sql.DB to Conn.
func Wrap(db *sql.DB) Conn {
	return sqlConn{db}
}

type sqlConn struct {
	*sql.DB
}

func (c sqlConn) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := c.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
