package blob

import (
	"context"
	"fmt"
	"time"
)

// Store is the subset of object store operations the server needs.
type Store interface {
	// Exists reports whether the object is present. A missing object is not an error.
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// PresignPut returns a URL the client can PUT the object to.
	PresignPut(ctx context.Context, key string, expires time.Duration) (string, error)
}

// StoreConfig carries the connection settings shared by both backends.
type StoreConfig struct {
	Backend   string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

// NewStore builds the Store selected by cfg.Backend ("s3" or "minio").
func NewStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", "s3":
		return NewS3Store(ctx, cfg)
	case "minio":
		return NewMinioStore(cfg)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
