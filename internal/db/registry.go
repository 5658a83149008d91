package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/go-sql-driver/mysql"
	"golang.org/x/sync/singleflight"

	"flexidb/internal/db/dialect"
	"flexidb/internal/ddl"
	"flexidb/internal/domain"
)

// Target describes where target databases live.
type Target struct {
	// Driver is "mysql", "sqlite3" or "duckdb".
	Driver string
	// DSN is the MySQL base DSN; its database name is replaced per handle.
	DSN string
	// DataDir holds <name>.sqlite or <name>.duckdb files.
	DataDir string
	// DefaultDatabase is used when a request names no database.
	DefaultDatabase string
}

// Registry hands out one pool per target database, opening each lazily.
// Concurrent first requests for the same database share a single open.
type Registry struct {
	target  Target
	dialect dialect.Dialect
	logger  *slog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	handles map[string]*Handle
	pools   []*sql.DB
	server  *sql.DB
	closed  bool
}

// NewRegistry validates target and returns an empty registry.
func NewRegistry(target Target, logger *slog.Logger) (*Registry, error) {
	d, err := dialect.ForDriver(target.Driver)
	if err != nil {
		return nil, err
	}
	if d.Name() == "mysql" {
		cfg, err := mysql.ParseDSN(target.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		if target.DefaultDatabase == "" {
			target.DefaultDatabase = cfg.DBName
		}
	} else if target.DataDir == "" {
		target.DataDir = "."
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		target:  target,
		dialect: d,
		logger:  logger,
		handles: make(map[string]*Handle),
	}, nil
}

// Dialect returns the dialect shared by every handle of the registry.
func (r *Registry) Dialect() dialect.Dialect { return r.dialect }

// Resolve returns the handle for database name, or the default database when
// name is empty. The name is validated before any connection is attempted.
func (r *Registry) Resolve(ctx context.Context, name string) (*Handle, error) {
	if name == "" {
		name = r.target.DefaultDatabase
	}
	if name == "" {
		return nil, domain.ErrValidation("Missing required field: database")
	}
	if !ddl.IsValidIdentifier(name) {
		return nil, domain.ErrValidation("Invalid database name.")
	}

	r.mu.RLock()
	h, ok := r.handles[name]
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return nil, domain.ErrStore(errors.New("registry closed"), "Database connection failed.")
	}
	if ok {
		return h, nil
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		r.mu.RLock()
		h, ok := r.handles[name]
		r.mu.RUnlock()
		if ok {
			return h, nil
		}
		return r.open(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

func (r *Registry) open(ctx context.Context, name string) (*Handle, error) {
	var (
		pool *sql.DB
		err  error
	)
	switch r.dialect.Name() {
	case "mysql":
		pool, err = r.openMySQL(ctx, name)
	case "sqlite3":
		pool, err = r.openFile(ctx, name, ".sqlite", func(path string) (*sql.DB, error) {
			return OpenSQLite(ctx, path, ModeWrite, 0)
		})
	case "duckdb":
		pool, err = r.openFile(ctx, name, ".duckdb", func(path string) (*sql.DB, error) {
			return sql.Open("duckdb", path)
		})
	}
	if err != nil {
		return nil, err
	}

	h := &Handle{Database: name, Conn: Wrap(pool), Dialect: r.dialect}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		_ = pool.Close()
		return nil, domain.ErrStore(errors.New("registry closed"), "Database connection failed.")
	}
	r.handles[name] = h
	r.pools = append(r.pools, pool)
	r.logger.Info("opened target database", "database", name, "driver", r.dialect.Name())
	return h, nil
}

func (r *Registry) openFile(ctx context.Context, name, ext string, open func(string) (*sql.DB, error)) (*sql.DB, error) {
	path := filepath.Join(r.target.DataDir, name+ext)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound("Database `%s` does not exist.", name)
		}
		return nil, domain.ErrStore(err, "Database connection failed.")
	}
	pool, err := open(path)
	if err != nil {
		return nil, domain.ErrStore(err, "Database connection failed.")
	}
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, domain.ErrStore(err, "Database connection failed.")
	}
	return pool, nil
}

func (r *Registry) openMySQL(ctx context.Context, name string) (*sql.DB, error) {
	server, err := r.serverPool()
	if err != nil {
		return nil, domain.ErrStore(err, "Database connection failed.")
	}
	var n int
	err = server.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?`, name).Scan(&n)
	if err != nil {
		return nil, domain.ErrStore(err, "Database connection failed.")
	}
	if n == 0 {
		return nil, domain.ErrNotFound("Database `%s` does not exist.", name)
	}

	dsn, err := mysqlDSN(r.target.DSN, name)
	if err != nil {
		return nil, domain.ErrStore(err, "Database connection failed.")
	}
	pool, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, domain.ErrStore(err, "Database connection failed.")
	}
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, domain.ErrStore(err, "Database connection failed.")
	}
	return pool, nil
}

// serverPool lazily opens a schema-less MySQL pool used for existence checks.
func (r *Registry) serverPool() (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.server != nil {
		return r.server, nil
	}
	dsn, err := mysqlDSN(r.target.DSN, "")
	if err != nil {
		return nil, err
	}
	pool, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(2)
	r.server = pool
	return pool, nil
}

// mysqlDSN rewrites base to select database and parse DATETIME columns.
func mysqlDSN(base, database string) (string, error) {
	cfg, err := mysql.ParseDSN(base)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.DBName = database
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// Close closes every pool the registry opened.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true

	var errs []error
	for _, p := range r.pools {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.server != nil {
		if err := r.server.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.pools = nil
	r.handles = map[string]*Handle{}
	return errors.Join(errs...)
}
