package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"flexidb/internal/domain"
)

// MySQL is the primary dialect. All introspection is scoped to DATABASE(),
// the schema the connection was opened on.
type MySQL struct{}

var _ Dialect = MySQL{}

var mysqlLiteralEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

func (MySQL) Name() string { return "mysql" }

func (MySQL) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (MySQL) QuoteLiteral(value string) string {
	return "'" + mysqlLiteralEscaper.Replace(value) + "'"
}

func (MySQL) TableExists(ctx context.Context, q Queryer, table string) (bool, error) {
	return countPositive(ctx, q,
		`SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`,
		table)
}

func (MySQL) Columns(ctx context.Context, q Queryer, table string) ([]domain.ColumnDescriptor, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, COLUMN_COMMENT, COLUMN_KEY, EXTRA
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var cols []domain.ColumnDescriptor
	for rows.Next() {
		var (
			c        domain.ColumnDescriptor
			nullable string
			def      sql.NullString
		)
		if err := rows.Scan(&c.Name, &c.Type, &nullable, &def, &c.Comment, &c.Key, &c.Extra); err != nil {
			return nil, err
		}
		c.Nullable = nullable == "YES"
		if def.Valid {
			c.Default = &def.String
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (MySQL) ColumnInForeignKey(ctx context.Context, q Queryer, table, column string) (bool, error) {
	return countPositive(ctx, q, `
		SELECT COUNT(*) FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = DATABASE()
		  AND REFERENCED_TABLE_NAME IS NOT NULL
		  AND ((TABLE_NAME = ? AND COLUMN_NAME = ?)
		    OR (REFERENCED_TABLE_NAME = ? AND REFERENCED_COLUMN_NAME = ?))`,
		table, column, table, column)
}

func (MySQL) IndexExists(ctx context.Context, q Queryer, table, index string) (bool, error) {
	return countPositive(ctx, q,
		`SELECT COUNT(*) FROM INFORMATION_SCHEMA.STATISTICS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND INDEX_NAME = ?`,
		table, index)
}

func (d MySQL) TableDefinition(ctx context.Context, q Queryer, table string) (string, error) {
	var name, ddl string
	if err := q.QueryRowContext(ctx, "SHOW CREATE TABLE "+d.QuoteIdent(table)).Scan(&name, &ddl); err != nil {
		return "", err
	}
	return ddl, nil
}

// columnSpec renders "<name> <TYPE> NULL|NOT NULL [DEFAULT ..] [AUTO_INCREMENT] [COMMENT ..]".
func (d MySQL) columnSpec(name string, def domain.ColumnDefinition) string {
	parts := []string{d.QuoteIdent(name), def.Type}
	if def.Nullable {
		parts = append(parts, "NULL")
	} else {
		parts = append(parts, "NOT NULL")
	}
	if def.Default != nil {
		parts = append(parts, "DEFAULT "+d.QuoteLiteral(*def.Default))
	}
	if def.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}
	if def.Comment != "" {
		parts = append(parts, "COMMENT "+d.QuoteLiteral(def.Comment))
	}
	return strings.Join(parts, " ")
}

func (d MySQL) AddColumn(table string, def domain.ColumnDefinition) ([]string, error) {
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.QuoteIdent(table), d.columnSpec(def.Name, def))
	switch {
	case def.Unique:
		stmt += ", ADD UNIQUE (" + d.QuoteIdent(def.Name) + ")"
	case def.Index:
		stmt += ", ADD INDEX (" + d.QuoteIdent(def.Name) + ")"
	}
	return []string{stmt}, nil
}

func (d MySQL) ModifyColumn(table string, current domain.ColumnDescriptor, def domain.ColumnDefinition) ([]string, error) {
	def.AutoIncrement = strings.Contains(strings.ToLower(current.Extra), "auto_increment")
	if def.Name == current.Name {
		return []string{fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s",
			d.QuoteIdent(table), d.columnSpec(def.Name, def))}, nil
	}
	return []string{fmt.Sprintf("ALTER TABLE %s CHANGE COLUMN %s %s",
		d.QuoteIdent(table), d.QuoteIdent(current.Name), d.columnSpec(def.Name, def))}, nil
}

func (d MySQL) DropColumn(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.QuoteIdent(table), d.QuoteIdent(column))
}

func (d MySQL) AddUniqueIndex(table, index, column string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s)",
		d.QuoteIdent(table), d.QuoteIdent(index), d.QuoteIdent(column))
}

func (d MySQL) DropIndex(table, index string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP INDEX %s", d.QuoteIdent(table), d.QuoteIdent(index))
}

func (MySQL) HistoryTableDDL() []string {
	return []string{`CREATE TABLE IF NOT EXISTS column_change_history (
	id INT AUTO_INCREMENT PRIMARY KEY,
	db_name VARCHAR(255),
	table_name VARCHAR(255),
	column_name VARCHAR(255),
	old_type VARCHAR(255),
	new_type VARCHAR(255),
	action ENUM('MODIFY', 'DROP', 'ADD', 'RENAME'),
	old_nullability VARCHAR(10),
	new_nullability VARCHAR(10),
	old_default TEXT,
	new_default TEXT,
	old_comment TEXT,
	new_comment TEXT,
	renamed_to VARCHAR(255),
	changed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`}
}

func (d MySQL) DeletedLogTableDDL(logTable string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id INT AUTO_INCREMENT PRIMARY KEY,
	deleted_data JSON NOT NULL,
	deleted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`, d.QuoteIdent(logTable))}
}
