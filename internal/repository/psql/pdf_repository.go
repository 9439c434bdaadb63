package psql

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/course-notes/internal/domain"
)

// PSQLPDFRepository implements the PDFRepository interface
type PSQLPDFRepository struct {
	BaseRepository
}

// NewPSQLPDFRepository creates a new PostgreSQL PDF repository
func NewPSQLPDFRepository(db DBTX) *PSQLPDFRepository {
	return &PSQLPDFRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create implements PDFRepository.Create
func (r *PSQLPDFRepository) Create(ctx context.Context, pdf *domain.PDF) error {
	query := `
		INSERT INTO notes.pdfs (id, subtopic_id, title, object_key, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, uploaded_at
	`

	if pdf.ID == uuid.Nil {
		pdf.ID = uuid.New()
	}
	if pdf.UploadedAt.IsZero() {
		pdf.UploadedAt = time.Now().UTC()
	}

	return r.db.QueryRow(
		ctx,
		query,
		pdf.ID,
		pdf.SubtopicID,
		pdf.Title,
		pdf.ObjectKey,
		pdf.UploadedAt,
	).Scan(&pdf.ID, &pdf.UploadedAt)
}

// Get implements PDFRepository.Get
func (r *PSQLPDFRepository) Get(ctx context.Context, id uuid.UUID) (*domain.PDF, error) {
	query := `
		SELECT id, subtopic_id, title, object_key, uploaded_at
		FROM notes.pdfs
		WHERE id = $1
	`

	pdf := &domain.PDF{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&pdf.ID,
		&pdf.SubtopicID,
		&pdf.Title,
		&pdf.ObjectKey,
		&pdf.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return pdf, nil
}

// Update implements PDFRepository.Update
func (r *PSQLPDFRepository) Update(ctx context.Context, pdf *domain.PDF) error {
	query := `
		UPDATE notes.pdfs
		SET title = $2, object_key = $3
		WHERE id = $1
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, pdf.ID, pdf.Title, pdf.ObjectKey).Scan(&pdf.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// Delete implements PDFRepository.Delete
func (r *PSQLPDFRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM notes.pdfs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBySubtopic implements PDFRepository.ListBySubtopic
func (r *PSQLPDFRepository) ListBySubtopic(ctx context.Context, subtopicID uuid.UUID) ([]*domain.PDF, error) {
	query := `
		SELECT id, subtopic_id, title, object_key, uploaded_at
		FROM notes.pdfs
		WHERE subtopic_id = $1
		ORDER BY uploaded_at
	`
	return r.list(ctx, query, subtopicID)
}

// ListByOwner implements PDFRepository.ListByOwner. Visibility is scoped via
// the subtopic's unit's owner.
func (r *PSQLPDFRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.PDF, error) {
	query := `
		SELECT p.id, p.subtopic_id, p.title, p.object_key, p.uploaded_at
		FROM notes.pdfs p
		JOIN notes.subtopics s ON p.subtopic_id = s.id
		JOIN notes.units u ON s.unit_id = u.id
		WHERE u.user_id = $1
		ORDER BY p.uploaded_at
	`
	return r.list(ctx, query, ownerID)
}

func (r *PSQLPDFRepository) list(ctx context.Context, query string, arg interface{}) ([]*domain.PDF, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pdfs := []*domain.PDF{}
	for rows.Next() {
		pdf := &domain.PDF{}
		if err := rows.Scan(&pdf.ID, &pdf.SubtopicID, &pdf.Title, &pdf.ObjectKey, &pdf.UploadedAt); err != nil {
			return nil, err
		}
		pdfs = append(pdfs, pdf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pdfs, nil
}
