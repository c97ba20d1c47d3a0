package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"

	"github.com/swipecast/vidgen/internal/config"
	"github.com/swipecast/vidgen/internal/logger"
)

// ObjectStore persists raw media bytes under a deterministic path and returns
// a public URL for the written object.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

type bucketStore struct {
	log           *logger.Logger
	client        *gcs.Client
	bucket        string
	publicBaseURL string
}

func NewBucketStore(ctx context.Context, log *logger.Logger, cfg config.StorageConfig) (ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("missing storage bucket name")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = "https://storage.googleapis.com/" + cfg.Bucket
	}

	return &bucketStore{
		log:           log.With("component", "bucket"),
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: base,
	}, nil
}

func (b *bucketStore) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return "", fmt.Errorf("object path required")
	}

	w := b.client.Bucket(b.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("object close: %w", err)
	}

	b.log.Debug("object uploaded", "path", path, "bytes", len(data), "content_type", contentType)
	return b.publicBaseURL + "/" + escapePath(path), nil
}

// escapePath escapes each path segment while keeping the separators intact.
func escapePath(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
