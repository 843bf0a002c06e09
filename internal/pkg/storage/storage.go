package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidPath is returned for paths that would escape the storage root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Storage defines the interface for file storage operations.
// Paths are slash separated and relative to the storage root.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error

	// Open returns the stored content. Missing files report an error
	// matching os.ErrNotExist.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error
}
