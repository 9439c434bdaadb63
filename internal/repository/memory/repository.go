package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/course-notes/internal/domain"
)

// Repository is an in-memory implementation of the repository interfaces.
// It is used in tests and for local development without Postgres. Foreign-key
// cascades are applied structurally on delete, matching the relational schema.
type Repository struct {
	mu              sync.RWMutex
	users           map[uuid.UUID]*domain.User
	usersByName     map[string]uuid.UUID
	units           map[uuid.UUID]*domain.Unit
	subtopics       map[uuid.UUID]*domain.Subtopic
	pdfs            map[uuid.UUID]*domain.PDF
	subtopicsByUnit map[uuid.UUID][]uuid.UUID
	pdfsBySubtopic  map[uuid.UUID][]uuid.UUID
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		users:           make(map[uuid.UUID]*domain.User),
		usersByName:     make(map[string]uuid.UUID),
		units:           make(map[uuid.UUID]*domain.Unit),
		subtopics:       make(map[uuid.UUID]*domain.Subtopic),
		pdfs:            make(map[uuid.UUID]*domain.PDF),
		subtopicsByUnit: make(map[uuid.UUID][]uuid.UUID),
		pdfsBySubtopic:  make(map[uuid.UUID][]uuid.UUID),
	}
}

// User operations

func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByName[user.Username]; exists {
		return domain.ErrUsernameTaken
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	userCopy := *user
	r.users[user.ID] = &userCopy
	r.usersByName[user.Username] = user.ID
	return nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.usersByName[username]
	if !exists {
		return nil, domain.ErrNotFound
	}
	userCopy := *r.users[id]
	return &userCopy, nil
}

// UnitStore returns the unit repository view of the store.
type UnitStore struct{ *Repository }

// SubtopicStore returns the subtopic repository view of the store.
type SubtopicStore struct{ *Repository }

// PDFStore returns the PDF repository view of the store.
type PDFStore struct{ *Repository }

// Units exposes the store as a repository.UnitRepository.
func (r *Repository) Units() *UnitStore { return &UnitStore{r} }

// Subtopics exposes the store as a repository.SubtopicRepository.
func (r *Repository) Subtopics() *SubtopicStore { return &SubtopicStore{r} }

// PDFs exposes the store as a repository.PDFRepository.
func (r *Repository) PDFs() *PDFStore { return &PDFStore{r} }

// Unit operations

func (s *UnitStore) Create(ctx context.Context, unit *domain.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = now
	}
	unit.UpdatedAt = now

	unitCopy := *unit
	s.units[unit.ID] = &unitCopy
	return nil
}

func (s *UnitStore) Get(ctx context.Context, id uuid.UUID) (*domain.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unit, exists := s.units[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	unitCopy := *unit
	return &unitCopy, nil
}

func (s *UnitStore) Update(ctx context.Context, unit *domain.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.units[unit.ID]; !exists {
		return domain.ErrNotFound
	}
	unit.UpdatedAt = time.Now().UTC()
	unitCopy := *unit
	s.units[unit.ID] = &unitCopy
	return nil
}

func (s *UnitStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.units[id]; !exists {
		return domain.ErrNotFound
	}

	// Structural cascade: subtopics under the unit, then their PDFs.
	for _, subID := range s.subtopicsByUnit[id] {
		for _, pdfID := range s.pdfsBySubtopic[subID] {
			delete(s.pdfs, pdfID)
		}
		delete(s.pdfsBySubtopic, subID)
		delete(s.subtopics, subID)
	}
	delete(s.subtopicsByUnit, id)
	delete(s.units, id)
	return nil
}

func (s *UnitStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*domain.Unit{}
	for _, unit := range s.units {
		if unit.UserID == ownerID {
			unitCopy := *unit
			result = append(result, &unitCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Subtopic operations

func (s *SubtopicStore) Create(ctx context.Context, subtopic *domain.Subtopic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.units[subtopic.UnitID]; !exists {
		return domain.ErrNotFound
	}

	now := time.Now().UTC()
	if subtopic.CreatedAt.IsZero() {
		subtopic.CreatedAt = now
	}
	subtopic.UpdatedAt = now

	subtopicCopy := *subtopic
	s.subtopics[subtopic.ID] = &subtopicCopy
	s.subtopicsByUnit[subtopic.UnitID] = append(s.subtopicsByUnit[subtopic.UnitID], subtopic.ID)
	return nil
}

func (s *SubtopicStore) Get(ctx context.Context, id uuid.UUID) (*domain.Subtopic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subtopic, exists := s.subtopics[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	subtopicCopy := *subtopic
	return &subtopicCopy, nil
}

func (s *SubtopicStore) Update(ctx context.Context, subtopic *domain.Subtopic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subtopics[subtopic.ID]; !exists {
		return domain.ErrNotFound
	}
	subtopic.UpdatedAt = time.Now().UTC()
	subtopicCopy := *subtopic
	s.subtopics[subtopic.ID] = &subtopicCopy
	return nil
}

func (s *SubtopicStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subtopic, exists := s.subtopics[id]
	if !exists {
		return domain.ErrNotFound
	}

	for _, pdfID := range s.pdfsBySubtopic[id] {
		delete(s.pdfs, pdfID)
	}
	delete(s.pdfsBySubtopic, id)
	s.subtopicsByUnit[subtopic.UnitID] = removeID(s.subtopicsByUnit[subtopic.UnitID], id)
	delete(s.subtopics, id)
	return nil
}

func (s *SubtopicStore) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*domain.Subtopic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*domain.Subtopic{}
	for _, id := range s.subtopicsByUnit[unitID] {
		if subtopic, exists := s.subtopics[id]; exists {
			subtopicCopy := *subtopic
			result = append(result, &subtopicCopy)
		}
	}
	sortSubtopics(result)
	return result, nil
}

func (s *SubtopicStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Subtopic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*domain.Subtopic{}
	for _, subtopic := range s.subtopics {
		unit, exists := s.units[subtopic.UnitID]
		if exists && unit.UserID == ownerID {
			subtopicCopy := *subtopic
			result = append(result, &subtopicCopy)
		}
	}
	sortSubtopics(result)
	return result, nil
}

// PDF operations

func (s *PDFStore) Create(ctx context.Context, pdf *domain.PDF) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subtopics[pdf.SubtopicID]; !exists {
		return domain.ErrNotFound
	}

	if pdf.UploadedAt.IsZero() {
		pdf.UploadedAt = time.Now().UTC()
	}

	pdfCopy := *pdf
	s.pdfs[pdf.ID] = &pdfCopy
	s.pdfsBySubtopic[pdf.SubtopicID] = append(s.pdfsBySubtopic[pdf.SubtopicID], pdf.ID)
	return nil
}

func (s *PDFStore) Get(ctx context.Context, id uuid.UUID) (*domain.PDF, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pdf, exists := s.pdfs[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	pdfCopy := *pdf
	return &pdfCopy, nil
}

func (s *PDFStore) Update(ctx context.Context, pdf *domain.PDF) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pdfs[pdf.ID]; !exists {
		return domain.ErrNotFound
	}
	pdfCopy := *pdf
	s.pdfs[pdf.ID] = &pdfCopy
	return nil
}

func (s *PDFStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pdf, exists := s.pdfs[id]
	if !exists {
		return domain.ErrNotFound
	}
	s.pdfsBySubtopic[pdf.SubtopicID] = removeID(s.pdfsBySubtopic[pdf.SubtopicID], id)
	delete(s.pdfs, id)
	return nil
}

func (s *PDFStore) ListBySubtopic(ctx context.Context, subtopicID uuid.UUID) ([]*domain.PDF, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*domain.PDF{}
	for _, id := range s.pdfsBySubtopic[subtopicID] {
		if pdf, exists := s.pdfs[id]; exists {
			pdfCopy := *pdf
			result = append(result, &pdfCopy)
		}
	}
	sortPDFs(result)
	return result, nil
}

func (s *PDFStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.PDF, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*domain.PDF{}
	for _, pdf := range s.pdfs {
		subtopic, exists := s.subtopics[pdf.SubtopicID]
		if !exists {
			continue
		}
		unit, exists := s.units[subtopic.UnitID]
		if exists && unit.UserID == ownerID {
			pdfCopy := *pdf
			result = append(result, &pdfCopy)
		}
	}
	sortPDFs(result)
	return result, nil
}

func sortSubtopics(subtopics []*domain.Subtopic) {
	sort.Slice(subtopics, func(i, j int) bool {
		return subtopics[i].CreatedAt.Before(subtopics[j].CreatedAt)
	})
}

func sortPDFs(pdfs []*domain.PDF) {
	sort.Slice(pdfs, func(i, j int) bool {
		return pdfs[i].UploadedAt.Before(pdfs[j].UploadedAt)
	})
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
