package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidPath = errors.New("path escapes the storage root")

// FileStorage keeps generated report files.
type FileStorage interface {
	// Save writes the content under path and returns the stored key
	Save(ctx context.Context, path string, content io.Reader) (string, error)

	// Open retrieves a stored file
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)
}
