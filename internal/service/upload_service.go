package service

import (
	"context"
	"fmt"
	"io"

	"github.com/tendant/course-notes/internal/domain"
	"github.com/tendant/course-notes/internal/storage"
)

// MaxImageSize caps inline editor image uploads at 5 MiB
const MaxImageSize = 5 << 20

// imageKeyPrefix groups inline editor images in the storage backend
const imageKeyPrefix = "quill_uploads"

// UploadService stores inline images referenced from rich-text notes.
// Stored images are standalone objects: no record tracks them, and they are
// never garbage-collected when the referencing note changes.
type UploadService struct {
	store storage.Backend
}

// NewUploadService creates a new upload service
func NewUploadService(store storage.Backend) *UploadService {
	return &UploadService{store: store}
}

// UploadImage stores the image and returns its public URL. Size is the
// declared payload length; anything over MaxImageSize is rejected before the
// backend is touched.
func (s *UploadService) UploadImage(ctx context.Context, filename string, size int64, file io.Reader) (string, error) {
	if size > MaxImageSize {
		return "", fmt.Errorf("%w: image exceeds the 5 MiB limit", domain.ErrInvalidInput)
	}

	key := objectKey(imageKeyPrefix, filename)
	if err := s.store.Upload(ctx, key, io.LimitReader(file, MaxImageSize)); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	url, err := s.store.GetDownloadURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return url, nil
}
