package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps blobs as files under a root directory.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates root if needed. An empty root uses a directory
// under os.TempDir().
func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), "job-finder-uploads")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

// Root returns the storage directory.
func (s *LocalStorage) Root() string {
	return s.root
}

// DeleteBlobs removes each key's file. Missing files count as deleted.
func (s *LocalStorage) DeleteBlobs(ctx context.Context, keys []string) []DeleteResult {
	results := make([]DeleteResult, len(keys))
	for i, key := range keys {
		results[i] = DeleteResult{Key: key}
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		path, err := s.resolve(key)
		if err != nil {
			results[i].Err = err
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			results[i].Err = fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return results
}

func (s *LocalStorage) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimSpace(key))
	if clean == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, clean), nil
}
