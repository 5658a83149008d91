package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"flexidb/internal/domain"
)

// BackupCatalogRepo records the table definition backups written before
// column drops, so an artifact can be traced back to its table.
type BackupCatalogRepo struct {
	db *sql.DB
}

// NewBackupCatalogRepo returns a BackupCatalogRepo over the metastore pool db.
func NewBackupCatalogRepo(db *sql.DB) *BackupCatalogRepo {
	return &BackupCatalogRepo{db: db}
}

// Record stores an artifact for database.table.
func (r *BackupCatalogRepo) Record(ctx context.Context, database, table string, a *domain.BackupArtifact) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO backup_artifacts
		(id, db_name, table_name, name, location, size_bytes, blake3, compressed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), database, table, a.Name, a.Location, a.Size, a.BLAKE3, boolToInt(a.Compressed))
	return err
}

// BackupRecord is a catalogued artifact.
type BackupRecord struct {
	Database  string
	Table     string
	Artifact  domain.BackupArtifact
	CreatedAt time.Time
}

// ListForTable returns the artifacts recorded for database.table, newest first.
func (r *BackupCatalogRepo) ListForTable(ctx context.Context, database, table string) ([]BackupRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT db_name, table_name, name, location, size_bytes, blake3, compressed, created_at
		FROM backup_artifacts WHERE db_name = ? AND table_name = ?
		ORDER BY created_at DESC`, database, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []BackupRecord
	for rows.Next() {
		var (
			rec        BackupRecord
			compressed int64
			created    string
		)
		if err := rows.Scan(&rec.Database, &rec.Table, &rec.Artifact.Name, &rec.Artifact.Location,
			&rec.Artifact.Size, &rec.Artifact.BLAKE3, &compressed, &created); err != nil {
			return nil, err
		}
		rec.Artifact.Compressed = compressed == 1
		rec.CreatedAt = metastoreTime(created)
		out = append(out, rec)
	}
	return out, rows.Err()
}
