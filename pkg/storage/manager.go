package storage

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/sdscatalog/config"
)

// Config selects and configures the active disk.
type Config struct {
	Driver    string // "local" or "s3"
	LocalRoot string
	LocalURL  string
	S3        S3Config
}

// ConfigFromEnv reads the STORAGE_* and S3_* keys.
func ConfigFromEnv() Config {
	return Config{
		Driver:    config.StorageDefault(),
		LocalRoot: config.StorageLocalRoot(),
		LocalURL:  config.StorageURL(),
		S3: S3Config{
			Bucket:     config.StorageS3Bucket(),
			Region:     config.StorageS3Region(),
			Key:        config.StorageS3Key(),
			Secret:     config.StorageS3Secret(),
			Endpoint:   config.StorageS3Endpoint(),
			URL:        config.StorageS3URL(),
			PublicRead: config.StorageS3PublicRead(),
		},
	}
}

// New returns the disk named by cfg.Driver.
func New(ctx context.Context, cfg Config) (Disk, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalRoot, cfg.LocalURL)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
