// Package backup stores table definition snapshots taken before a column is
// dropped. Artifacts can be written to a local directory or to S3, GCS or
// Azure Blob Storage, optionally xz-compressed, and always carry a BLAKE3
// checksum of the definition text.
package backup

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"flexidb/internal/domain"
)

// Store persists backup artifacts.
type Store interface {
	// Put stores definition under name and describes the stored artifact.
	Put(ctx context.Context, name string, definition []byte) (*domain.BackupArtifact, error)
	// Backend names the storage kind ("local", "s3", "gcs", "azure").
	Backend() string
}

// stampLayout renders YYYYMMDD_HHMMSS.
const stampLayout = "20060102_150405"

// ArtifactName returns "<database>/<table>_structure_backup_<stamp>.sql".
func ArtifactName(database, table string, at time.Time) string {
	return path.Join(database, fmt.Sprintf("%s_structure_backup_%s.sql", table, at.Format(stampLayout)))
}

// Checksum returns the hex BLAKE3-256 digest of data.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// encoder prepares artifact bytes and the final object name.
type encoder struct {
	compress bool
}

func (e encoder) encode(name string, definition []byte) (string, []byte, error) {
	if !e.compress {
		return name, definition, nil
	}
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return "", nil, fmt.Errorf("xz writer: %w", err)
	}
	if _, err := w.Write(definition); err != nil {
		return "", nil, fmt.Errorf("xz write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("xz close: %w", err)
	}
	return name + ".xz", buf.Bytes(), nil
}

func (e encoder) artifact(name, location string, stored, definition []byte) *domain.BackupArtifact {
	return &domain.BackupArtifact{
		Name:       name,
		Location:   location,
		Size:       int64(len(stored)),
		BLAKE3:     Checksum(definition),
		Compressed: e.compress,
	}
}

// Decode reverses the encoding of an artifact named name.
func Decode(name string, data []byte) ([]byte, error) {
	if !strings.HasSuffix(name, ".xz") {
		return data, nil
	}
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xz reader: %w", err)
	}
	return io.ReadAll(r)
}

// objectKey joins an optional prefix and an artifact name.
func objectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}
