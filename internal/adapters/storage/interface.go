// Package storage provides storage adapter interfaces.
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned when a path does not exist.
var ErrNotExist = errors.New("file not found")

// Storage defines the storage adapter interface used for scripts,
// schema snapshots and error logs.
type Storage interface {
	// Read reads contents from a path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write writes contents to a path, creating parent directories.
	Write(ctx context.Context, path string, content []byte) error

	// Append appends contents to a path, creating it if needed.
	Append(ctx context.Context, path string, content []byte) error

	// Delete deletes a file at path.
	Delete(ctx context.Context, path string) error

	// RemoveAll deletes path and everything below it.
	RemoveAll(ctx context.Context, path string) error

	// Exists checks if a path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// List lists the entries of a directory sorted by name.
	List(ctx context.Context, dir string) ([]FileInfo, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(ctx context.Context, path string) error

	// Resolve returns the path the adapter uses for path.
	Resolve(path string) string
}

// FileInfo represents file metadata.
type FileInfo struct {
	Name    string
	Size    int64
	IsDir   bool
	ModTime int64
}

// Config holds storage configuration.
type Config struct {
	// Type is the storage type (filesystem, memory).
	Type string

	// BasePath is the base path for filesystem storage.
	BasePath string
}
