package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestMetastore opens a migrated metastore in t.TempDir() and registers
// cleanup.
func OpenTestMetastore(t *testing.T) (writeDB, readDB *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "meta.sqlite")
	writeDB, readDB, err := OpenMetastore(context.Background(), path)
	if err != nil {
		t.Fatalf("open test metastore: %v", err)
	}
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})

	if err := RunMigrations(context.Background(), writeDB); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return writeDB, readDB
}

// OpenTestTarget creates the SQLite target database <dir>/<name>.sqlite,
// runs schema on it, and returns a registry serving dir with name as the
// default database.
func OpenTestTarget(t *testing.T, name, schema string) (*Registry, *Handle) {
	t.Helper()

	dir := t.TempDir()
	seed, err := sql.Open("sqlite3", filepath.Join(dir, name+".sqlite")+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("create target: %v", err)
	}
	if schema != "" {
		if _, err := seed.Exec(schema); err != nil {
			_ = seed.Close()
			t.Fatalf("seed target: %v", err)
		}
	}
	_ = seed.Close()

	reg, err := NewRegistry(Target{Driver: "sqlite3", DataDir: dir, DefaultDatabase: name}, nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	t.Cleanup(func() { _ = reg.Close() })

	h, err := reg.Resolve(context.Background(), name)
	if err != nil {
		t.Fatalf("resolve target: %v", err)
	}
	return reg, h
}
