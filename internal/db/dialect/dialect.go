// Package dialect encapsulates the SQL text that differs between the
// supported stores: identifier quoting, introspection queries, column DDL
// and the lazily created log tables.
package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"flexidb/internal/domain"
)

// Queryer is the read side of a connection or transaction.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect generates store-specific SQL. Identifiers passed in must already
// be validated; Dialect only quotes them.
type Dialect interface {
	// Name is the database/sql driver name.
	Name() string
	QuoteIdent(name string) string
	QuoteLiteral(value string) string

	TableExists(ctx context.Context, q Queryer, table string) (bool, error)
	Columns(ctx context.Context, q Queryer, table string) ([]domain.ColumnDescriptor, error)
	// ColumnInForeignKey reports whether column references another table or
	// is referenced by one.
	ColumnInForeignKey(ctx context.Context, q Queryer, table, column string) (bool, error)
	IndexExists(ctx context.Context, q Queryer, table, index string) (bool, error)
	// TableDefinition returns the DDL that recreates table.
	TableDefinition(ctx context.Context, q Queryer, table string) (string, error)

	AddColumn(table string, def domain.ColumnDefinition) ([]string, error)
	ModifyColumn(table string, current domain.ColumnDescriptor, def domain.ColumnDefinition) ([]string, error)
	DropColumn(table, column string) string
	AddUniqueIndex(table, index, column string) string
	DropIndex(table, index string) string

	// HistoryTableDDL creates column_change_history if absent.
	HistoryTableDDL() []string
	// DeletedLogTableDDL creates the deleted-row log table if absent.
	DeletedLogTableDDL(logTable string) []string
}

// HistoryTable is the append-only column change log inside each target database.
const HistoryTable = "column_change_history"

// DeletedLogTable returns the snapshot table name for deletes from table.
func DeletedLogTable(table string) string {
	return "deleted_" + table
}

// UniqueIndexName returns the index name used for a column's uniqueness toggle.
func UniqueIndexName(table, column string) string {
	return "uniq_" + table + "_" + column
}

// PlainIndexName returns the index name used when adding an indexed column
// to a store that cannot declare indexes inline.
func PlainIndexName(table, column string) string {
	return "idx_" + table + "_" + column
}

// ForDriver returns the dialect for a database/sql driver name.
func ForDriver(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "mysql":
		return MySQL{}, nil
	case "sqlite3", "sqlite":
		return SQLite{}, nil
	case "duckdb":
		return DuckDB{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func quoteDouble(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteSingle(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// unquoteDefault turns a SQL default expression such as 'abc' or 'it''s'
// back into the literal text; other expressions are returned as-is.
func unquoteDefault(expr string) string {
	if len(expr) >= 2 && expr[0] == '\'' && expr[len(expr)-1] == '\'' {
		return strings.ReplaceAll(expr[1:len(expr)-1], "''", "'")
	}
	return expr
}

func countPositive(ctx context.Context, q Queryer, query string, args ...any) (bool, error) {
	var n int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func sameDefault(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
