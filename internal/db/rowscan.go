package db

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"flexidb/internal/domain"
)

// ScanRows reads every remaining row into ordered rows. Driver byte slices
// are turned into strings, or numbers when the column's database type is
// integral or floating point.
func ScanRows(rows *sql.Rows) ([]*domain.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	out := []*domain.Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := domain.NewRow(len(cols))
		for i, name := range cols {
			row.Set(name, normalize(vals[i], types[i].DatabaseTypeName()))
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func normalize(v any, dbType string) any {
	switch x := v.(type) {
	case []byte:
		s := string(x)
		t := strings.ToUpper(dbType)
		switch {
		case strings.Contains(t, "INT"):
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
		case t == "FLOAT" || t == "DOUBLE" || t == "REAL":
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
		return s
	case time.Time:
		return x.UTC().Format(time.DateTime)
	default:
		return v
	}
}
