package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const defaultGCSBase = "https://storage.googleapis.com"

// GCSStore uploads to Google Cloud Storage. Buckets are expected to be
// publicly readable through IAM so PublicURL needs no signing.
type GCSStore struct {
	client        *storage.Client
	PublicBaseURL string
}

func NewGCSStore(ctx context.Context, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCSStore{client: client, PublicBaseURL: defaultGCSBase}, nil
}

func (g *GCSStore) Close() error { return g.client.Close() }

func (g *GCSStore) Upload(ctx context.Context, bucket, name, contentType string, data []byte) (string, error) {
	if strings.TrimSpace(bucket) == "" {
		return "", errors.New("gcs: bucket is empty")
	}
	obj := strings.TrimLeft(strings.TrimSpace(name), "/")
	if obj == "" {
		return "", errors.New("gcs: object name is empty")
	}

	w := g.client.Bucket(bucket).Object(obj).NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}
	w.ChunkSize = 0
	w.Metadata = map[string]string{
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return obj, nil
}

func (g *GCSStore) PublicURL(bucket, path string) string {
	base := strings.TrimRight(g.PublicBaseURL, "/")
	if base == "" {
		base = defaultGCSBase
	}
	parts := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return fmt.Sprintf("%s/%s/%s", base, bucket, strings.Join(parts, "/"))
}
