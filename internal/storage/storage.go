package storage

import (
	"context"
	"io"
)

// Backend defines the interface for storage backends. Uploads are synchronous:
// callers do not proceed until the backend has acknowledged the write.
type Backend interface {
	// Upload stores content under the given key
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// GetDownloadURL returns a publicly resolvable URL for the key
	GetDownloadURL(ctx context.Context, objectKey string) (string, error)

	// Download retrieves content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error
}
