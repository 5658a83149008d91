package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"flexidb/internal/domain"
)

// LocalStore writes artifacts below a directory on disk.
type LocalStore struct {
	dir string
	encoder
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore returns a store rooted at dir, creating it if needed.
func NewLocalStore(dir string, compress bool) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve backup dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	return &LocalStore{dir: abs, encoder: encoder{compress: compress}}, nil
}

func (s *LocalStore) Backend() string { return "local" }

// Dir returns the root directory.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Put(_ context.Context, name string, definition []byte) (*domain.BackupArtifact, error) {
	name, data, err := s.encode(name, definition)
	if err != nil {
		return nil, err
	}
	full := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return nil, fmt.Errorf("create backup subdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o640); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}
	return s.artifact(name, "file://"+filepath.ToSlash(full), data, definition), nil
}

// Read returns the decoded definition stored under name.
func (s *LocalStore) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	return Decode(name, data)
}

// Prune removes artifacts last modified before now-retention and returns
// how many were removed.
func (s *LocalStore) Prune(retention time.Duration, now time.Time) (int, error) {
	cutoff := now.Add(-retention)
	removed := 0
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(p); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}
