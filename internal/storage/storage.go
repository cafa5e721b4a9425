// Package storage persists uploaded media on local disk or in an S3 bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/YURESSA/foodgram-st/internal/config"
)

// ErrForeignURL is returned when a URL does not belong to the store.
var ErrForeignURL = errors.New("storage: url not managed by this store")

// Store saves objects under a key and serves them from a public URL.
type Store interface {
	// Put stores data under key and returns its public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes the object behind url. Missing objects are not an error.
	Delete(ctx context.Context, url string) error
	// Backend names the store for metrics.
	Backend() string
}

// New builds the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case config.StorageS3:
		return NewS3Store(ctx, cfg)
	case config.StorageLocal, "":
		return NewLocalStore(cfg.UploadDir, cfg.MediaURL), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// keyFromURL strips base from url, rejecting keys that escape the store root.
func keyFromURL(base, url string) (string, error) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", ErrForeignURL
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", ErrForeignURL
	}
	return key, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
