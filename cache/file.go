package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// HashLength is the number of SHA256 bytes used in file names.
	HashLength = 20

	// FileExtension is the extension of committed values.
	FileExtension = ".dat"

	// NewFileExtension marks a value being written before it is renamed into place.
	NewFileExtension = ".dat-new"
)

// FileStore keeps one file per key under a root directory.
// Writes go to a temporary file that is renamed over the old value, so
// readers never observe a partial blob.
type FileStore struct {
	rootDir string
}

// NewFileStore creates the root directory if needed.
func NewFileStore(rootDir string) (*FileStore, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{rootDir: rootDir}, nil
}

// FileName returns the on-disk name for key: a truncated SHA256 hex digest.
func FileName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:HashLength]) + FileExtension
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.rootDir, FileName(key))
}

func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		recordLookup("file", false)
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %q: %w", key, err)
	}

	recordLookup("file", true)
	return string(data), true, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := s.path(key)
	tmp, err := os.CreateTemp(s.rootDir, filepath.Base(target)+"-*"+NewFileExtension)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
