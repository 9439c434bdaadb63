package config

import (
	"context"
	"fmt"

	"github.com/tendant/course-notes/internal/repository"
	memoryrepo "github.com/tendant/course-notes/internal/repository/memory"
	"github.com/tendant/course-notes/internal/repository/psql"
	"github.com/tendant/course-notes/internal/storage"
	fsstorage "github.com/tendant/course-notes/internal/storage/fs"
	memorystorage "github.com/tendant/course-notes/internal/storage/memory"
	s3storage "github.com/tendant/course-notes/internal/storage/s3"
)

// Repositories bundles the persistence interfaces the services depend on
type Repositories struct {
	Users     repository.UserRepository
	Units     repository.UnitRepository
	Subtopics repository.SubtopicRepository
	PDFs      repository.PDFRepository
}

// BuildRepositories constructs the persistence layer. With Postgres
// disabled, everything lives in process memory.
func (c *Config) BuildRepositories(ctx context.Context) (*Repositories, error) {
	if !c.DB.Enabled {
		repo := memoryrepo.New()
		return &Repositories{
			Users:     repo,
			Units:     repo.Units(),
			Subtopics: repo.Subtopics(),
			PDFs:      repo.PDFs(),
		}, nil
	}

	pool, err := NewDbPool(ctx, c.DB)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Users:     psql.NewPSQLUserRepository(pool),
		Units:     psql.NewPSQLUnitRepository(pool),
		Subtopics: psql.NewPSQLSubtopicRepository(pool),
		PDFs:      psql.NewPSQLPDFRepository(pool),
	}, nil
}

// BuildStorage constructs the object storage backend named by
// STORAGE_BACKEND.
func (c *Config) BuildStorage() (storage.Backend, error) {
	switch c.Storage.Backend {
	case "memory":
		return memorystorage.NewMemoryBackend(), nil
	case "fs":
		return fsstorage.NewFSBackend(fsstorage.Config{
			BaseDir:   c.FS.BaseDir,
			URLPrefix: c.FS.URLPrefix,
		})
	case "s3":
		return s3storage.NewS3Backend(s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.BucketName,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PublicBaseURL:          c.S3.PublicBaseURL,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
}
