package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"flexidb/internal/domain"
)

// SQLite supports ADD, DROP and RENAME COLUMN only. Type, nullability and
// default changes would need a table rebuild and are refused.
type SQLite struct{}

var _ Dialect = SQLite{}

func (SQLite) Name() string { return "sqlite3" }

func (SQLite) QuoteIdent(name string) string { return quoteDouble(name) }

func (SQLite) QuoteLiteral(value string) string { return quoteSingle(value) }

func (SQLite) TableExists(ctx context.Context, q Queryer, table string) (bool, error) {
	return countPositive(ctx, q,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
}

func (SQLite) Columns(ctx context.Context, q Queryer, table string) ([]domain.ColumnDescriptor, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var cols []domain.ColumnDescriptor
	for rows.Next() {
		var (
			c       domain.ColumnDescriptor
			notNull int
			def     sql.NullString
			pk      int
		)
		if err := rows.Scan(&c.Name, &c.Type, &notNull, &def, &pk); err != nil {
			return nil, err
		}
		c.Nullable = notNull == 0 && pk == 0
		if def.Valid {
			v := unquoteDefault(def.String)
			c.Default = &v
		}
		if pk > 0 {
			c.Key = "PRI"
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (SQLite) ColumnInForeignKey(ctx context.Context, q Queryer, table, column string) (bool, error) {
	return countPositive(ctx, q, `
		SELECT COUNT(*)
		FROM sqlite_master m
		JOIN pragma_foreign_key_list(m.name) fk
		WHERE m.type = 'table'
		  AND ((m.name = ? AND fk."from" = ?) OR (fk."table" = ? AND fk."to" = ?))`,
		table, column, table, column)
}

func (SQLite) IndexExists(ctx context.Context, q Queryer, table, index string) (bool, error) {
	return countPositive(ctx, q,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND name = ?`,
		table, index)
}

func (SQLite) TableDefinition(ctx context.Context, q Queryer, table string) (string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT sql FROM sqlite_master WHERE tbl_name = ? AND sql IS NOT NULL ORDER BY type DESC, name`, table)
	if err != nil {
		return "", err
	}
	defer rows.Close() //nolint:errcheck

	var stmts []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return "", err
		}
		stmts = append(stmts, s+";")
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(stmts) == 0 {
		return "", sql.ErrNoRows
	}
	return strings.Join(stmts, "\n"), nil
}

func (d SQLite) AddColumn(table string, def domain.ColumnDefinition) ([]string, error) {
	if def.AutoIncrement {
		return nil, domain.ErrPolicy("AUTO_INCREMENT columns cannot be added to an existing SQLite table.")
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", d.QuoteIdent(table), d.QuoteIdent(def.Name), def.Type)
	if !def.Nullable {
		stmt += " NOT NULL"
	}
	if def.Default != nil {
		stmt += " DEFAULT " + d.QuoteLiteral(*def.Default)
	}
	stmts := []string{stmt}
	switch {
	case def.Unique:
		stmts = append(stmts, d.AddUniqueIndex(table, UniqueIndexName(table, def.Name), def.Name))
	case def.Index:
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			d.QuoteIdent(PlainIndexName(table, def.Name)), d.QuoteIdent(table), d.QuoteIdent(def.Name)))
	}
	return stmts, nil
}

func (d SQLite) ModifyColumn(table string, current domain.ColumnDescriptor, def domain.ColumnDefinition) ([]string, error) {
	if !strings.EqualFold(current.Type, def.Type) || current.Nullable != def.Nullable || !sameDefault(current.Default, def.Default) {
		return nil, domain.ErrPolicy("SQLite cannot change a column's type, nullability or default; only renames are supported.")
	}
	if def.Name == current.Name {
		return nil, nil
	}
	return []string{fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		d.QuoteIdent(table), d.QuoteIdent(current.Name), d.QuoteIdent(def.Name))}, nil
}

func (d SQLite) DropColumn(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.QuoteIdent(table), d.QuoteIdent(column))
}

func (d SQLite) AddUniqueIndex(table, index, column string) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)", d.QuoteIdent(index), d.QuoteIdent(table), d.QuoteIdent(column))
}

func (d SQLite) DropIndex(_, index string) string {
	return "DROP INDEX " + d.QuoteIdent(index)
}

func (SQLite) HistoryTableDDL() []string {
	return []string{`CREATE TABLE IF NOT EXISTS column_change_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	db_name TEXT,
	table_name TEXT,
	column_name TEXT,
	old_type TEXT,
	new_type TEXT,
	action TEXT CHECK (action IN ('MODIFY', 'DROP', 'ADD', 'RENAME')),
	old_nullability TEXT,
	new_nullability TEXT,
	old_default TEXT,
	new_default TEXT,
	old_comment TEXT,
	new_comment TEXT,
	renamed_to TEXT,
	changed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`}
}

func (d SQLite) DeletedLogTableDDL(logTable string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	deleted_data TEXT NOT NULL,
	deleted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`, d.QuoteIdent(logTable))}
}
