// Package storage persists submitted assignment files.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrInvalidName = errors.New("invalid file name")

// FileInfo describes a stored file
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// FileStore saves assignment files under a flat namespace of generated names
type FileStore interface {
	// Save writes the file and returns the reference kept on the user record
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]FileInfo, error)
	// URL returns where clients can download the file
	URL(name string) string
}
