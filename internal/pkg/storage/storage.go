package storage

import (
	"context"
	"errors"
	"io"
)

var ErrFileNotFound = errors.New("file not found")

// FileStorage keeps generated documents such as payslips.
type FileStorage interface {
	// Save writes the content under key and returns its location
	Save(ctx context.Context, content io.Reader, key string) (string, error)

	// Open retrieves a file
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file
	Delete(ctx context.Context, key string) error

	// Exists checks if file exists
	Exists(ctx context.Context, key string) (bool, error)
}
