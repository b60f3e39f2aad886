package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects on disk under root/bucket and serves them from
// baseURL/uploads/bucket.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (l *LocalStore) Root() string { return l.root }

func (l *LocalStore) Upload(_ context.Context, bucket, name, _ string, data []byte) (string, error) {
	clean := filepath.Clean("/" + name)[1:]
	dest := filepath.Join(l.root, bucket, clean)
	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}
	return filepath.ToSlash(clean), nil
}

func (l *LocalStore) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/uploads/%s/%s", l.baseURL, bucket, strings.TrimLeft(path, "/"))
}
