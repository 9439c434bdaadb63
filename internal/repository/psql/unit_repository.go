package psql

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/course-notes/internal/domain"
)

// PSQLUnitRepository implements the UnitRepository interface
type PSQLUnitRepository struct {
	BaseRepository
}

// NewPSQLUnitRepository creates a new PostgreSQL unit repository
func NewPSQLUnitRepository(db DBTX) *PSQLUnitRepository {
	return &PSQLUnitRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create implements UnitRepository.Create
func (r *PSQLUnitRepository) Create(ctx context.Context, unit *domain.Unit) error {
	query := `
		INSERT INTO notes.units (id, user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	if unit.ID == uuid.Nil {
		unit.ID = uuid.New()
	}
	now := time.Now().UTC()
	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = now
	}
	unit.UpdatedAt = now

	return r.db.QueryRow(
		ctx,
		query,
		unit.ID,
		unit.UserID,
		unit.Name,
		unit.CreatedAt,
		unit.UpdatedAt,
	).Scan(&unit.ID, &unit.CreatedAt, &unit.UpdatedAt)
}

// Get implements UnitRepository.Get
func (r *PSQLUnitRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Unit, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM notes.units
		WHERE id = $1
	`

	unit := &domain.Unit{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&unit.ID,
		&unit.UserID,
		&unit.Name,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return unit, nil
}

// Update implements UnitRepository.Update
func (r *PSQLUnitRepository) Update(ctx context.Context, unit *domain.Unit) error {
	query := `
		UPDATE notes.units
		SET name = $2, updated_at = $3
		WHERE id = $1
		RETURNING updated_at
	`

	unit.UpdatedAt = time.Now().UTC()

	err := r.db.QueryRow(ctx, query, unit.ID, unit.Name, unit.UpdatedAt).Scan(&unit.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// Delete implements UnitRepository.Delete. Subtopics and their PDFs are
// removed by the ON DELETE CASCADE constraints in the schema.
func (r *PSQLUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM notes.units WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByOwner implements UnitRepository.ListByOwner
func (r *PSQLUnitRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Unit, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM notes.units
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := []*domain.Unit{}
	for rows.Next() {
		unit := &domain.Unit{}
		if err := rows.Scan(&unit.ID, &unit.UserID, &unit.Name, &unit.CreatedAt, &unit.UpdatedAt); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return units, nil
}
