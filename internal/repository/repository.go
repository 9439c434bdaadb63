package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tendant/course-notes/internal/domain"
)

// UserRepository defines the interface for user account operations
type UserRepository interface {
	// Create persists a new user. Returns domain.ErrUsernameTaken when the
	// username is already registered.
	Create(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// UnitRepository defines the interface for unit operations
type UnitRepository interface {
	Create(ctx context.Context, unit *domain.Unit) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Unit, error)
	Update(ctx context.Context, unit *domain.Unit) error
	// Delete removes the unit and cascades to its subtopics and their PDFs.
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Unit, error)
}

// SubtopicRepository defines the interface for subtopic operations
type SubtopicRepository interface {
	Create(ctx context.Context, subtopic *domain.Subtopic) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Subtopic, error)
	Update(ctx context.Context, subtopic *domain.Subtopic) error
	// Delete removes the subtopic and cascades to its PDFs.
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*domain.Subtopic, error)
	// ListByOwner returns all subtopics whose unit is owned by ownerID.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Subtopic, error)
}

// PDFRepository defines the interface for PDF attachment operations
type PDFRepository interface {
	Create(ctx context.Context, pdf *domain.PDF) error
	Get(ctx context.Context, id uuid.UUID) (*domain.PDF, error)
	Update(ctx context.Context, pdf *domain.PDF) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListBySubtopic(ctx context.Context, subtopicID uuid.UUID) ([]*domain.PDF, error)
	// ListByOwner returns all PDFs whose subtopic's unit is owned by ownerID.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.PDF, error)
}
