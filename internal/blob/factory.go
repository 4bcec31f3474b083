package blob

import (
	"context"
	"fmt"

	"poms/internal/infra/blob/fs"
	"poms/internal/infra/blob/memory"
	"poms/internal/infra/blob/s3"
)

// S3Config carries the bucket settings for the s3 driver.
type S3Config = s3.Config

// Config selects a backend. An empty driver means the filesystem.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open builds the configured Store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFilesystem, "":
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}

// NewMemory returns a process-local store.
func NewMemory() Store { return memory.New() }

// NewFilesystem returns a store rooted at root (default ./blobdata).
func NewFilesystem(root string) (Store, error) {
	store, err := fs.New(root)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewS3 returns a bucket-backed store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	store, err := s3.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}
