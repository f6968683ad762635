package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tirescan-backend/internal/shared/storage/object"
)

// Store archives photos under a directory on local disk.
type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

// Save writes the photo through a temp file and a rename, so a crash never
// leaves a partial image at the final key.
func (s *Store) Save(ctx context.Context, p object.Photo) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := p.Key()
	dest, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(p.Data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write photo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close photo: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("publish photo: %w", err)
	}
	return key, nil
}

// Read returns an archived photo.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func (s *Store) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid archive key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

var _ object.Archive = (*Store)(nil)
