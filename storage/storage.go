package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/princinho/eshopbackend/config"
	"github.com/princinho/eshopbackend/metrics"
	"github.com/princinho/eshopbackend/utils"
)

// ErrInvalidUpload marks files rejected by validation, as opposed to store failures.
var ErrInvalidUpload = errors.New("invalid upload")

// FileStore persists uploaded files and hands back their public URL.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL maps a public URL produced by Put back to its object key.
	KeyFromURL(raw string) (string, error)
	Driver() string
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (FileStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL+LocalRoute)
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket, cfg.GCSCredentialsFile)
	case "r2":
		return NewR2Store(ctx, cfg.R2Endpoint, cfg.R2AccessKey, cfg.R2SecretKey, cfg.Bucket, cfg.R2PublicDomain)
	case "minio":
		return NewMinIOStore(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.Bucket, cfg.MinIOUseSSL)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// ProductPrefix is the key prefix owned by one product. Only objects under it
// are ever deleted on the product's behalf.
func ProductPrefix(productID string) string {
	return "products/" + productID + "/"
}

// ProductImageKey builds a unique object key under the product's prefix.
func ProductImageKey(productID, productName, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	slug := utils.GenerateSlug(productName)
	if slug == "" {
		slug = "product"
	}
	return fmt.Sprintf("%s%s-%d-%s%s", ProductPrefix(productID), slug, time.Now().UnixNano(), uuid.NewString()[:8], ext)
}

// UploadImages validates and stores every file, returning their public URLs
// in order. Objects are written with the sniffed content type, never the one
// the client declared. On failure the objects already written are removed.
func UploadImages(
	ctx context.Context,
	store FileStore,
	v *utils.FileValidator,
	productID, productName string,
	files []*multipart.FileHeader,
) ([]string, error) {
	types := make([]string, len(files))
	for i, fh := range files {
		ct, err := v.ValidateFile(fh)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidUpload, fh.Filename, err)
		}
		types[i] = ct
	}

	urls := make([]string, 0, len(files))
	keys := make([]string, 0, len(files))
	for i, fh := range files {
		key := ProductImageKey(productID, productName, fh.Filename)

		f, err := fh.Open()
		if err != nil {
			_ = DeleteKeys(ctx, store, keys)
			return nil, fmt.Errorf("open file: %w", err)
		}
		u, err := store.Put(ctx, key, f, fh.Size, types[i])
		_ = f.Close()
		if err != nil {
			_ = DeleteKeys(ctx, store, keys)
			return nil, fmt.Errorf("upload %s: %w", fh.Filename, err)
		}
		metrics.UploadedBytes.WithLabelValues(store.Driver()).Add(float64(fh.Size))

		keys = append(keys, key)
		urls = append(urls, u)
	}
	return urls, nil
}

// DeleteKeys removes every key and returns the first error seen.
func DeleteKeys(ctx context.Context, store FileStore, keys []string) error {
	var firstErr error
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return firstErr
}

// DeleteURLs removes the objects behind URLs this store produced under
// prefix. URLs that point elsewhere, or at another product's objects, are
// skipped.
func DeleteURLs(ctx context.Context, store FileStore, prefix string, urls []string) error {
	keys := make([]string, 0, len(urls))
	for _, u := range urls {
		key, err := store.KeyFromURL(u)
		if err != nil || !strings.HasPrefix(key, prefix) {
			continue
		}
		keys = append(keys, key)
	}
	return DeleteKeys(ctx, store, keys)
}
