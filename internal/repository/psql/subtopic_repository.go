package psql

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/course-notes/internal/domain"
)

// PSQLSubtopicRepository implements the SubtopicRepository interface
type PSQLSubtopicRepository struct {
	BaseRepository
}

// NewPSQLSubtopicRepository creates a new PostgreSQL subtopic repository
func NewPSQLSubtopicRepository(db DBTX) *PSQLSubtopicRepository {
	return &PSQLSubtopicRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create implements SubtopicRepository.Create
func (r *PSQLSubtopicRepository) Create(ctx context.Context, subtopic *domain.Subtopic) error {
	query := `
		INSERT INTO notes.subtopics (id, unit_id, title, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	if subtopic.ID == uuid.Nil {
		subtopic.ID = uuid.New()
	}
	now := time.Now().UTC()
	if subtopic.CreatedAt.IsZero() {
		subtopic.CreatedAt = now
	}
	subtopic.UpdatedAt = now

	return r.db.QueryRow(
		ctx,
		query,
		subtopic.ID,
		subtopic.UnitID,
		subtopic.Title,
		subtopic.Notes,
		subtopic.CreatedAt,
		subtopic.UpdatedAt,
	).Scan(&subtopic.ID, &subtopic.CreatedAt, &subtopic.UpdatedAt)
}

// Get implements SubtopicRepository.Get
func (r *PSQLSubtopicRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Subtopic, error) {
	query := `
		SELECT id, unit_id, title, notes, created_at, updated_at
		FROM notes.subtopics
		WHERE id = $1
	`

	subtopic := &domain.Subtopic{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&subtopic.ID,
		&subtopic.UnitID,
		&subtopic.Title,
		&subtopic.Notes,
		&subtopic.CreatedAt,
		&subtopic.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return subtopic, nil
}

// Update implements SubtopicRepository.Update
func (r *PSQLSubtopicRepository) Update(ctx context.Context, subtopic *domain.Subtopic) error {
	query := `
		UPDATE notes.subtopics
		SET title = $2, notes = $3, updated_at = $4
		WHERE id = $1
		RETURNING updated_at
	`

	subtopic.UpdatedAt = time.Now().UTC()

	err := r.db.QueryRow(
		ctx,
		query,
		subtopic.ID,
		subtopic.Title,
		subtopic.Notes,
		subtopic.UpdatedAt,
	).Scan(&subtopic.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// Delete implements SubtopicRepository.Delete. PDFs under the subtopic are
// removed by the ON DELETE CASCADE constraint.
func (r *PSQLSubtopicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM notes.subtopics WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUnit implements SubtopicRepository.ListByUnit
func (r *PSQLSubtopicRepository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*domain.Subtopic, error) {
	query := `
		SELECT id, unit_id, title, notes, created_at, updated_at
		FROM notes.subtopics
		WHERE unit_id = $1
		ORDER BY created_at
	`
	return r.list(ctx, query, unitID)
}

// ListByOwner implements SubtopicRepository.ListByOwner. Visibility is scoped
// through the unit's owner.
func (r *PSQLSubtopicRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Subtopic, error) {
	query := `
		SELECT s.id, s.unit_id, s.title, s.notes, s.created_at, s.updated_at
		FROM notes.subtopics s
		JOIN notes.units u ON s.unit_id = u.id
		WHERE u.user_id = $1
		ORDER BY s.created_at
	`
	return r.list(ctx, query, ownerID)
}

func (r *PSQLSubtopicRepository) list(ctx context.Context, query string, arg interface{}) ([]*domain.Subtopic, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subtopics := []*domain.Subtopic{}
	for rows.Next() {
		subtopic := &domain.Subtopic{}
		err := rows.Scan(
			&subtopic.ID,
			&subtopic.UnitID,
			&subtopic.Title,
			&subtopic.Notes,
			&subtopic.CreatedAt,
			&subtopic.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		subtopics = append(subtopics, subtopic)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subtopics, nil
}
