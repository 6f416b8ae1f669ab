package artifacts

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
)

// GCSMirror is a SnapshotMirror backed by a Google Cloud Storage bucket.
type GCSMirror struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSMirrorConfig configures a GCSMirror.
type GCSMirrorConfig struct {
	Bucket string
	Prefix string
}

// NewGCSMirror builds a GCSMirror using application default credentials.
func NewGCSMirror(ctx context.Context, cfg GCSMirrorConfig) (*GCSMirror, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs mirror: new client: %w", err)
	}
	return &GCSMirror{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Store uploads data keyed by its SHA-256 hash, skipping the upload if an
// object already exists under that key.
func (m *GCSMirror) Store(ctx context.Context, data []byte) (string, error) {
	hashHex := HashBytes(data)
	objectPath := m.prefix + hashHex + ".blob"

	obj := m.client.Bucket(m.bucket).Object(objectPath)
	if _, err := obj.Attrs(ctx); err == nil {
		return "sha256:" + hashHex, nil
	} else if !errors.Is(err, storage.ErrObjectNotExist) {
		return "", fmt.Errorf("gcs mirror: attrs %s: %w", objectPath, err)
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs mirror: write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs mirror: close %s: %w", objectPath, err)
	}
	return "sha256:" + hashHex, nil
}

// Close releases the underlying GCS client.
func (m *GCSMirror) Close() error {
	return m.client.Close()
}
