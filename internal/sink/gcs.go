package sink

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
)

// GCS writes objects into a Cloud Storage bucket under a prefix.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS connects with application default credentials.
func NewGCS(ctx context.Context, bucket, prefix string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

// Close releases the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// Write uploads the object. If write fails, the upload context is cancelled
// before Close so the object is never finalized.
func (g *GCS) Write(ctx context.Context, name string, write func(io.Writer) error) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}

	objectName := path.Join(g.prefix, name)
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(objectName).NewWriter(wctx)
	w.ContentType = contentType(name)

	if err := write(w); err != nil {
		cancel()
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload gs://%s/%s: %w", g.bucket, objectName, err)
	}
	return fmt.Sprintf("gs://%s/%s", g.bucket, objectName), nil
}

// parseGCSTarget splits "gs://bucket/some/prefix" into bucket and prefix.
func parseGCSTarget(target string) (bucket, prefix string, err error) {
	rest := strings.TrimPrefix(target, "gs://")
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in %q", target)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}
