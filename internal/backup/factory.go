package backup

import (
	"context"
	"fmt"

	"flexidb/internal/config"
)

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.BackupConfig) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.Dir, cfg.Compress)
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			KeyID:     cfg.S3KeyID,
			Secret:    cfg.S3Secret,
			PathStyle: cfg.S3PathStyle,
		}, cfg.Compress)
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket, cfg.Prefix, cfg.GCSKeyFile, cfg.Compress)
	case "azure":
		return NewAzureStore(cfg.AzureConnectionString, cfg.Bucket, cfg.Prefix, cfg.Compress)
	default:
		return nil, fmt.Errorf("unknown backup backend %q", cfg.Backend)
	}
}
