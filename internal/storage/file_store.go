package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/welldanyogia/sjajred-backend/internal/errors"
)

// Security errors
var (
	ErrPathTraversal = errors.New("path traversal detected")
	ErrEmptyKey      = errors.New("key must not be empty")
)

const fileSuffix = ".json"

// fileStore implements KeyValueStore with one file per key under basePath
type fileStore struct {
	basePath string
}

// NewFileStore creates a directory-backed KeyValueStore
func NewFileStore(basePath string) (KeyValueStore, error) {
	// Ensure base directory exists
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &fileStore{basePath: basePath}, nil
}

// fileName maps a key onto a single flat file name. Keys such as
// "session:abc" are escaped so they never introduce path separators.
func fileName(key string) string {
	return url.PathEscape(key) + fileSuffix
}

// validatePath ensures path is within basePath (prevents traversal)
func (s *fileStore) validatePath(name string) (string, error) {
	cleanPath := filepath.Clean(name)

	if filepath.IsAbs(cleanPath) || strings.Contains(cleanPath, "..") {
		return "", ErrPathTraversal
	}

	fullPath := filepath.Join(s.basePath, cleanPath)

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	return absPath, nil
}

func (s *fileStore) pathFor(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	return s.validatePath(fileName(key))
}

// Get reads the value stored under key
func (s *fileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("key %q: %w", key, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Put writes the value atomically: a uniquely named temp file is renamed over the target
func (s *fileStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.pathFor(key)
	if err != nil {
		return err
	}

	tmpPath := filepath.Join(s.basePath, "."+uuid.New().String()+".tmp")
	if err := os.WriteFile(tmpPath, value, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		// Clean up on error
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

// Delete removes the value stored under key; a missing key is not an error
func (s *fileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.pathFor(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Keys lists stored keys starting with prefix, sorted
func (s *fileStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileSuffix) || strings.HasPrefix(name, ".") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, fileSuffix))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
