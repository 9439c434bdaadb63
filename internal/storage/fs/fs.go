package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/course-notes/internal/storage"
)

// FSBackend is a filesystem implementation of the storage.Backend interface
type FSBackend struct {
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // URL prefix under which BaseDir is served
}

// NewFSBackend creates a new filesystem storage backend
func NewFSBackend(config Config) (*FSBackend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if config.URLPrefix == "" {
		return nil, errors.New("url prefix is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FSBackend{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimSuffix(config.URLPrefix, "/"),
	}, nil
}

// Upload uploads content directly to the filesystem
func (b *FSBackend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	filePath := filepath.Join(b.baseDir, objectKey)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// GetDownloadURL returns the URL at which the object is served
func (b *FSBackend) GetDownloadURL(ctx context.Context, objectKey string) (string, error) {
	return fmt.Sprintf("%s/%s", b.urlPrefix, objectKey), nil
}

// Download downloads content directly from the filesystem
func (b *FSBackend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath := filepath.Join(b.baseDir, objectKey)

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, errors.New("object not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete deletes content from the filesystem
func (b *FSBackend) Delete(ctx context.Context, objectKey string) error {
	filePath := filepath.Join(b.baseDir, objectKey)

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return errors.New("object not found")
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

var _ storage.Backend = (*FSBackend)(nil)
