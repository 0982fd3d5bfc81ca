package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage keeps raw artifact bytes on the local filesystem, one file per
// minted identifier. Identifiers never contain path separators, but the
// guard stays in case a caller hands through raw input.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// Path returns the filesystem location a key resolves to.
func (s *Storage) Path(key string) string {
	return filepath.Join(s.basePath, key)
}

func (s *Storage) Save(_ context.Context, key string, data io.Reader) error {
	if err := validateKey(key); err != nil {
		return err
	}
	f, err := os.Create(s.Path(key))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path(key))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty storage key")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("storage key %q escapes base path", key)
	}
	return nil
}
