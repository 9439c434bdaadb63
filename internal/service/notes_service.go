package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/course-notes/internal/domain"
	"github.com/tendant/course-notes/internal/repository"
	"github.com/tendant/course-notes/internal/storage"
)

// pdfKeyPrefix groups attachment objects in the storage backend
const pdfKeyPrefix = "course_files"

// NotesService handles the ownership-scoped CRUD for units, subtopics and
// PDF attachments. Every operation takes the caller's user id; records owned
// by other users are invisible and reported as domain.ErrNotFound.
type NotesService struct {
	units     repository.UnitRepository
	subtopics repository.SubtopicRepository
	pdfs      repository.PDFRepository
	store     storage.Backend
}

// NewNotesService creates a new notes service
func NewNotesService(
	units repository.UnitRepository,
	subtopics repository.SubtopicRepository,
	pdfs repository.PDFRepository,
	store storage.Backend,
) *NotesService {
	return &NotesService{
		units:     units,
		subtopics: subtopics,
		pdfs:      pdfs,
		store:     store,
	}
}

// Ownership predicates. Ownership is re-derived on every access by walking
// the chain PDF -> Subtopic -> Unit -> User; nothing below Unit carries a
// denormalized owner.

func (s *NotesService) visibleUnit(ctx context.Context, userID, unitID uuid.UUID) (*domain.Unit, error) {
	unit, err := s.units.Get(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if !unit.OwnedBy(userID) {
		return nil, domain.ErrNotFound
	}
	return unit, nil
}

func (s *NotesService) visibleSubtopic(ctx context.Context, userID, subtopicID uuid.UUID) (*domain.Subtopic, error) {
	subtopic, err := s.subtopics.Get(ctx, subtopicID)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleUnit(ctx, userID, subtopic.UnitID); err != nil {
		return nil, err
	}
	return subtopic, nil
}

func (s *NotesService) visiblePDF(ctx context.Context, userID, pdfID uuid.UUID) (*domain.PDF, error) {
	pdf, err := s.pdfs.Get(ctx, pdfID)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleSubtopic(ctx, userID, pdf.SubtopicID); err != nil {
		return nil, err
	}
	return pdf, nil
}

// Unit operations

func (s *NotesService) ListUnits(ctx context.Context, userID uuid.UUID) ([]*domain.Unit, error) {
	return s.units.ListByOwner(ctx, userID)
}

func (s *NotesService) CreateUnit(ctx context.Context, userID uuid.UUID, name string) (*domain.Unit, error) {
	unit := &domain.Unit{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	}
	if err := s.units.Create(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *NotesService) GetUnit(ctx context.Context, userID, unitID uuid.UUID) (*domain.Unit, error) {
	return s.visibleUnit(ctx, userID, unitID)
}

func (s *NotesService) UpdateUnit(ctx context.Context, userID, unitID uuid.UUID, name string) (*domain.Unit, error) {
	unit, err := s.visibleUnit(ctx, userID, unitID)
	if err != nil {
		return nil, err
	}
	unit.Name = name
	if err := s.units.Update(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *NotesService) DeleteUnit(ctx context.Context, userID, unitID uuid.UUID) error {
	if _, err := s.visibleUnit(ctx, userID, unitID); err != nil {
		return err
	}
	return s.units.Delete(ctx, unitID)
}

// AddSubtopic creates a subtopic with empty notes under an owned unit
func (s *NotesService) AddSubtopic(ctx context.Context, userID, unitID uuid.UUID, title string) (*domain.Subtopic, error) {
	return s.CreateSubtopic(ctx, userID, unitID, title, "")
}

// Subtopic operations

func (s *NotesService) ListSubtopics(ctx context.Context, userID uuid.UUID) ([]*domain.Subtopic, error) {
	return s.subtopics.ListByOwner(ctx, userID)
}

func (s *NotesService) CreateSubtopic(ctx context.Context, userID, unitID uuid.UUID, title, notes string) (*domain.Subtopic, error) {
	if _, err := s.visibleUnit(ctx, userID, unitID); err != nil {
		return nil, err
	}

	subtopic := &domain.Subtopic{
		ID:     uuid.New(),
		UnitID: unitID,
		Title:  title,
		Notes:  notes,
	}
	if err := s.subtopics.Create(ctx, subtopic); err != nil {
		return nil, err
	}
	return subtopic, nil
}

func (s *NotesService) GetSubtopic(ctx context.Context, userID, subtopicID uuid.UUID) (*domain.Subtopic, error) {
	return s.visibleSubtopic(ctx, userID, subtopicID)
}

// UpdateSubtopic applies a partial update; nil fields are left unchanged
func (s *NotesService) UpdateSubtopic(ctx context.Context, userID, subtopicID uuid.UUID, title, notes *string) (*domain.Subtopic, error) {
	subtopic, err := s.visibleSubtopic(ctx, userID, subtopicID)
	if err != nil {
		return nil, err
	}
	if title != nil {
		subtopic.Title = *title
	}
	if notes != nil {
		subtopic.Notes = *notes
	}
	if err := s.subtopics.Update(ctx, subtopic); err != nil {
		return nil, err
	}
	return subtopic, nil
}

func (s *NotesService) DeleteSubtopic(ctx context.Context, userID, subtopicID uuid.UUID) error {
	if _, err := s.visibleSubtopic(ctx, userID, subtopicID); err != nil {
		return err
	}
	return s.subtopics.Delete(ctx, subtopicID)
}

// SubtopicsForUnit returns the subtopics under an already-authorized unit
func (s *NotesService) SubtopicsForUnit(ctx context.Context, unitID uuid.UUID) ([]*domain.Subtopic, error) {
	return s.subtopics.ListByUnit(ctx, unitID)
}

// PDF operations

func (s *NotesService) ListPDFs(ctx context.Context, userID uuid.UUID) ([]*domain.PDF, error) {
	return s.pdfs.ListByOwner(ctx, userID)
}

// CreatePDF stores the binary payload first, then creates the record. No
// record is created without a confirmed stored object.
func (s *NotesService) CreatePDF(ctx context.Context, userID, subtopicID uuid.UUID, title, filename string, file io.Reader) (*domain.PDF, error) {
	if _, err := s.visibleSubtopic(ctx, userID, subtopicID); err != nil {
		return nil, err
	}

	key := objectKey(pdfKeyPrefix, filename)
	if err := s.store.Upload(ctx, key, file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	pdf := &domain.PDF{
		ID:         uuid.New(),
		SubtopicID: subtopicID,
		Title:      title,
		ObjectKey:  key,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.pdfs.Create(ctx, pdf); err != nil {
		return nil, err
	}
	return pdf, nil
}

func (s *NotesService) GetPDF(ctx context.Context, userID, pdfID uuid.UUID) (*domain.PDF, error) {
	return s.visiblePDF(ctx, userID, pdfID)
}

// UpdatePDF applies a metadata-only update (rename). The stored binary is
// untouched.
func (s *NotesService) UpdatePDF(ctx context.Context, userID, pdfID uuid.UUID, title *string) (*domain.PDF, error) {
	pdf, err := s.visiblePDF(ctx, userID, pdfID)
	if err != nil {
		return nil, err
	}
	if title != nil {
		pdf.Title = *title
	}
	if err := s.pdfs.Update(ctx, pdf); err != nil {
		return nil, err
	}
	return pdf, nil
}

// ReplacePDFFile stores a new binary for the attachment and repoints the
// record at it. The old object is deleted best-effort afterwards.
func (s *NotesService) ReplacePDFFile(ctx context.Context, userID, pdfID uuid.UUID, title *string, filename string, file io.Reader) (*domain.PDF, error) {
	pdf, err := s.visiblePDF(ctx, userID, pdfID)
	if err != nil {
		return nil, err
	}

	key := objectKey(pdfKeyPrefix, filename)
	if err := s.store.Upload(ctx, key, file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	oldKey := pdf.ObjectKey
	pdf.ObjectKey = key
	if title != nil {
		pdf.Title = *title
	}
	if err := s.pdfs.Update(ctx, pdf); err != nil {
		return nil, err
	}

	if oldKey != "" && oldKey != key {
		if err := s.store.Delete(ctx, oldKey); err != nil {
			slog.Warn("failed to delete replaced object", "key", oldKey, "error", err)
		}
	}
	return pdf, nil
}

// DeletePDF removes the record, then the stored object best-effort
func (s *NotesService) DeletePDF(ctx context.Context, userID, pdfID uuid.UUID) error {
	pdf, err := s.visiblePDF(ctx, userID, pdfID)
	if err != nil {
		return err
	}
	if err := s.pdfs.Delete(ctx, pdfID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, pdf.ObjectKey); err != nil {
		slog.Warn("failed to delete stored object", "key", pdf.ObjectKey, "error", err)
	}
	return nil
}

// PDFsForSubtopic returns the attachments under an already-authorized subtopic
func (s *NotesService) PDFsForSubtopic(ctx context.Context, subtopicID uuid.UUID) ([]*domain.PDF, error) {
	return s.pdfs.ListBySubtopic(ctx, subtopicID)
}

// FileURL resolves the attachment's storage key to a fully-qualified URL
func (s *NotesService) FileURL(ctx context.Context, pdf *domain.PDF) (string, error) {
	url, err := s.store.GetDownloadURL(ctx, pdf.ObjectKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return url, nil
}
