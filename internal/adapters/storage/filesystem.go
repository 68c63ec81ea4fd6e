// Package storage provides an afero-backed storage implementation.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// AferoStorage implements Storage on top of an afero filesystem.
type AferoStorage struct {
	fs       afero.Fs
	basePath string
}

// NewFilesystemStorage creates a storage adapter rooted at basePath on fs.
func NewFilesystemStorage(fs afero.Fs, basePath string) *AferoStorage {
	return &AferoStorage{
		fs:       fs,
		basePath: basePath,
	}
}

// NewMemoryStorage creates a new in-memory storage adapter.
func NewMemoryStorage() *AferoStorage {
	return NewFilesystemStorage(afero.NewMemMapFs(), "/")
}

// Fs returns the underlying filesystem.
func (s *AferoStorage) Fs() afero.Fs {
	return s.fs
}

// Resolve resolves a path relative to the base path.
func (s *AferoStorage) Resolve(path string) string {
	if filepath.IsAbs(path) || s.basePath == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(s.basePath, path)
}

// Read reads contents from a path.
func (s *AferoStorage) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := afero.ReadFile(s.fs, s.Resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// Write writes contents to a path.
func (s *AferoStorage) Write(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := s.Resolve(path)
	if err := s.fs.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, fullPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Append appends contents to a path.
func (s *AferoStorage) Append(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := s.Resolve(path)
	if err := s.fs.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := s.fs.OpenFile(fullPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("failed to append to file: %w", err)
	}
	return nil
}

// Delete deletes a file at path.
func (s *AferoStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.fs.Remove(s.Resolve(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// RemoveAll deletes path and everything below it.
func (s *AferoStorage) RemoveAll(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.fs.RemoveAll(s.Resolve(path)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// Exists checks if a path exists.
func (s *AferoStorage) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return afero.Exists(s.fs, s.Resolve(path))
}

// List lists all entries in a directory.
func (s *AferoStorage) List(ctx context.Context, dir string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(s.fs, s.Resolve(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, dir)
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		files = append(files, FileInfo{
			Name:    e.Name(),
			Size:    e.Size(),
			IsDir:   e.IsDir(),
			ModTime: e.ModTime().Unix(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// MkdirAll creates a directory and all parent directories.
func (s *AferoStorage) MkdirAll(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.Resolve(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Ensure AferoStorage implements Storage interface.
var _ Storage = (*AferoStorage)(nil)
