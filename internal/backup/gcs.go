package backup

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"flexidb/internal/domain"
)

// GCSStore uploads artifacts to a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
	encoder
}

var _ Store = (*GCSStore)(nil)

// NewGCSStore creates a client from a service account key file, or from
// application default credentials when keyFile is empty.
func NewGCSStore(ctx context.Context, bucket, prefix, keyFile string, compress bool) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs backup bucket is required")
	}
	var opts []option.ClientOption
	if keyFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, keyFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, prefix: prefix, encoder: encoder{compress: compress}}, nil
}

func (s *GCSStore) Backend() string { return "gcs" }

func (s *GCSStore) Put(ctx context.Context, name string, definition []byte) (*domain.BackupArtifact, error) {
	name, data, err := s.encode(name, definition)
	if err != nil {
		return nil, err
	}
	key := objectKey(s.prefix, name)
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType(s.compress)
	w.Metadata = map[string]string{"blake3": Checksum(definition)}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("write gs://%s/%s: %w", s.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close gs://%s/%s: %w", s.bucket, key, err)
	}
	return s.artifact(name, fmt.Sprintf("gs://%s/%s", s.bucket, key), data, definition), nil
}

// Close releases the client.
func (s *GCSStore) Close() error { return s.client.Close() }
