// Package repository reads and writes the engine's own tables: live table
// metadata, the column change history and deleted-row snapshots inside each
// target database, and the operation audit log in the metastore.
package repository

import (
	"context"
	"database/sql"
	"time"

	"flexidb/internal/db"
)

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nullableString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// execAll runs statements in order, stopping at the first failure.
func execAll(ctx context.Context, q db.Querier, stmts []string) error {
	for _, s := range stmts {
		if _, err := q.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// metastoreLayout is fixed-width so timestamps sort lexically.
const metastoreLayout = "2006-01-02T15:04:05.000000000Z"

// metastoreTime parses timestamps written by the repos or by the schema's
// strftime default.
func metastoreTime(s string) time.Time {
	for _, layout := range []string{metastoreLayout, "2006-01-02T15:04:05.000Z", time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
