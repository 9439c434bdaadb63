package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/course-notes/internal/domain"
	"github.com/tendant/course-notes/internal/service"
	memorystorage "github.com/tendant/course-notes/internal/storage/memory"
)

func TestUploadService_UploadImage(t *testing.T) {
	svc := service.NewUploadService(memorystorage.NewMemoryBackend())
	ctx := context.Background()

	payload := bytes.Repeat([]byte("a"), 4<<20)
	url, err := svc.UploadImage(ctx, "diagram.png", int64(len(payload)), bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Contains(t, url, "quill_uploads/")
	assert.Contains(t, url, "diagram.png")
}

func TestUploadService_UploadImage_TooLarge(t *testing.T) {
	svc := service.NewUploadService(memorystorage.NewMemoryBackend())
	ctx := context.Background()

	payload := bytes.Repeat([]byte("a"), 6<<20)
	_, err := svc.UploadImage(ctx, "big.png", int64(len(payload)), bytes.NewReader(payload))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUploadService_UploadImage_UniqueKeys(t *testing.T) {
	svc := service.NewUploadService(memorystorage.NewMemoryBackend())
	ctx := context.Background()

	url1, err := svc.UploadImage(ctx, "same.png", 4, strings.NewReader("img1"))
	require.NoError(t, err)
	url2, err := svc.UploadImage(ctx, "same.png", 4, strings.NewReader("img2"))
	require.NoError(t, err)

	// Identically-named files never collide
	assert.NotEqual(t, url1, url2)
}
