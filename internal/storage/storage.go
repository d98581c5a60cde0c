// Package storage persists uploaded files, currently only proof-of-payment
// receipt images. Implementations cover the local filesystem for development
// and S3-compatible object storage for production.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/tavolaworks/tavola/internal/domain"
)

// Storage defines the interface for file storage operations.
type Storage interface {
	// Put stores a file and returns its URL for retrieval. The key should
	// be a unique path (e.g., "receipts/{order-id}/{uuid}.jpg").
	Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error)

	// Get retrieves a file by its key. The returned reader must be closed
	// by the caller.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file by its key. Deleting a missing file is not an
	// error (idempotent).
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for a stored file.
	URL(key string) string
}

// Config selects and configures a storage backend.
type Config struct {
	Provider string // "local" or "s3"

	LocalPath string
	LocalURL  string

	S3Endpoint  string // optional, for S3-compatible stores
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
}

// New creates a Storage implementation from configuration.
func New(cfg Config) (Storage, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocal(cfg.LocalPath, cfg.LocalURL)
	case "s3":
		return NewS3(cfg)
	default:
		return nil, domain.Invalid("storage.new", fmt.Sprintf("unknown storage provider: %s", cfg.Provider))
	}
}

// ErrFileNotFound creates an error for a missing file.
func ErrFileNotFound(key string) error {
	return domain.NotFound("storage.get", "file", key)
}
