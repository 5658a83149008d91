package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"flexidb/internal/domain"
)

// DuckDB expresses a column change as a sequence of ALTER COLUMN
// statements and keeps comments with COMMENT ON COLUMN.
type DuckDB struct{}

var _ Dialect = DuckDB{}

func (DuckDB) Name() string { return "duckdb" }

func (DuckDB) QuoteIdent(name string) string { return quoteDouble(name) }

func (DuckDB) QuoteLiteral(value string) string { return quoteSingle(value) }

func (DuckDB) TableExists(ctx context.Context, q Queryer, table string) (bool, error) {
	return countPositive(ctx, q,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?`,
		table)
}

func (DuckDB) Columns(ctx context.Context, q Queryer, table string) ([]domain.ColumnDescriptor, error) {
	keys, err := duckdbKeyColumns(ctx, q, table)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT c.column_name, c.data_type, c.is_nullable, c.column_default, COALESCE(d.comment, '')
		FROM information_schema.columns c
		LEFT JOIN duckdb_columns() d
		  ON d.schema_name = c.table_schema AND d.table_name = c.table_name AND d.column_name = c.column_name
		WHERE c.table_schema = current_schema() AND c.table_name = ?
		ORDER BY c.ordinal_position`, table)
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
		if err := rows.Scan(&c.Name, &c.Type, &nullable, &def, &c.Comment); err != nil {
			return nil, err
		}
		c.Nullable = nullable == "YES"
		if def.Valid {
			v := unquoteDefault(def.String)
			c.Default = &v
		}
		c.Key = keys[c.Name]
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// duckdbKeyColumns maps column names to "PRI" or "UNI".
func duckdbKeyColumns(ctx context.Context, q Queryer, table string) (map[string]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT unnest(constraint_column_names), constraint_type
		FROM duckdb_constraints()
		WHERE schema_name = current_schema() AND table_name = ?
		  AND constraint_type IN ('PRIMARY KEY', 'UNIQUE')`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	keys := make(map[string]string)
	for rows.Next() {
		var col, kind string
		if err := rows.Scan(&col, &kind); err != nil {
			return nil, err
		}
		if kind == "PRIMARY KEY" {
			keys[col] = "PRI"
		} else if keys[col] == "" {
			keys[col] = "UNI"
		}
	}
	return keys, rows.Err()
}

func (DuckDB) ColumnInForeignKey(ctx context.Context, q Queryer, table, column string) (bool, error) {
	return countPositive(ctx, q, `
		SELECT COUNT(*) FROM duckdb_constraints()
		WHERE schema_name = current_schema()
		  AND constraint_type = 'FOREIGN KEY'
		  AND ((table_name = ? AND list_contains(constraint_column_names, ?))
		    OR (referenced_table = ? AND list_contains(referenced_column_names, ?)))`,
		table, column, table, column)
}

func (DuckDB) IndexExists(ctx context.Context, q Queryer, table, index string) (bool, error) {
	return countPositive(ctx, q,
		`SELECT COUNT(*) FROM duckdb_indexes() WHERE schema_name = current_schema() AND table_name = ? AND index_name = ?`,
		table, index)
}

func (DuckDB) TableDefinition(ctx context.Context, q Queryer, table string) (string, error) {
	var ddl string
	err := q.QueryRowContext(ctx,
		`SELECT sql FROM duckdb_tables() WHERE schema_name = current_schema() AND table_name = ?`, table).Scan(&ddl)
	if err != nil {
		return "", err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT sql FROM duckdb_indexes() WHERE schema_name = current_schema() AND table_name = ? AND sql IS NOT NULL ORDER BY index_name`, table)
	if err != nil {
		return "", err
	}
	defer rows.Close() //nolint:errcheck

	stmts := []string{strings.TrimSuffix(ddl, ";") + ";"}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return "", err
		}
		stmts = append(stmts, strings.TrimSuffix(s, ";")+";")
	}
	return strings.Join(stmts, "\n"), rows.Err()
}

func (d DuckDB) AddColumn(table string, def domain.ColumnDefinition) ([]string, error) {
	if def.AutoIncrement {
		return nil, domain.ErrPolicy("AUTO_INCREMENT is not supported by DuckDB; use a sequence default instead.")
	}
	t := d.QuoteIdent(table)
	c := d.QuoteIdent(def.Name)

	add := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", t, c, def.Type)
	if def.Default != nil {
		add += " DEFAULT " + d.QuoteLiteral(*def.Default)
	}
	stmts := []string{add}
	if !def.Nullable {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", t, c))
	}
	if def.Comment != "" {
		stmts = append(stmts, d.commentOn(table, def.Name, def.Comment))
	}
	switch {
	case def.Unique:
		stmts = append(stmts, d.AddUniqueIndex(table, UniqueIndexName(table, def.Name), def.Name))
	case def.Index:
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			d.QuoteIdent(PlainIndexName(table, def.Name)), t, c))
	}
	return stmts, nil
}

func (d DuckDB) ModifyColumn(table string, current domain.ColumnDescriptor, def domain.ColumnDefinition) ([]string, error) {
	t := d.QuoteIdent(table)
	name := current.Name

	var stmts []string
	if def.Name != current.Name {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", t, d.QuoteIdent(current.Name), d.QuoteIdent(def.Name)))
		name = def.Name
	}
	c := d.QuoteIdent(name)

	if !strings.EqualFold(current.Type, def.Type) {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", t, c, def.Type))
	}
	if current.Nullable != def.Nullable {
		if def.Nullable {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", t, c))
		} else {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", t, c))
		}
	}
	switch {
	case def.Default != nil && !sameDefault(current.Default, def.Default):
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", t, c, d.QuoteLiteral(*def.Default)))
	case def.Default == nil && current.Default != nil:
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", t, c))
	}
	if def.Comment != current.Comment {
		stmts = append(stmts, d.commentOn(table, name, def.Comment))
	}
	return stmts, nil
}

func (d DuckDB) commentOn(table, column, comment string) string {
	value := "NULL"
	if comment != "" {
		value = d.QuoteLiteral(comment)
	}
	return fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s", d.QuoteIdent(table), d.QuoteIdent(column), value)
}

func (d DuckDB) DropColumn(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.QuoteIdent(table), d.QuoteIdent(column))
}

func (d DuckDB) AddUniqueIndex(table, index, column string) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)", d.QuoteIdent(index), d.QuoteIdent(table), d.QuoteIdent(column))
}

func (d DuckDB) DropIndex(_, index string) string {
	return "DROP INDEX " + d.QuoteIdent(index)
}

func (DuckDB) HistoryTableDDL() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS column_change_history_id_seq`,
		`CREATE TABLE IF NOT EXISTS column_change_history (
	id BIGINT PRIMARY KEY DEFAULT nextval('column_change_history_id_seq'),
	db_name VARCHAR,
	table_name VARCHAR,
	column_name VARCHAR,
	old_type VARCHAR,
	new_type VARCHAR,
	action VARCHAR CHECK (action IN ('MODIFY', 'DROP', 'ADD', 'RENAME')),
	old_nullability VARCHAR,
	new_nullability VARCHAR,
	old_default VARCHAR,
	new_default VARCHAR,
	old_comment VARCHAR,
	new_comment VARCHAR,
	renamed_to VARCHAR,
	changed_at TIMESTAMP DEFAULT current_timestamp
)`,
	}
}

func (d DuckDB) DeletedLogTableDDL(logTable string) []string {
	seq := logTable + "_id_seq"
	return []string{
		"CREATE SEQUENCE IF NOT EXISTS " + d.QuoteIdent(seq),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGINT PRIMARY KEY DEFAULT nextval(%s),
	deleted_data VARCHAR NOT NULL,
	deleted_at TIMESTAMP DEFAULT current_timestamp
)`, d.QuoteIdent(logTable), d.QuoteLiteral(seq)),
	}
}
