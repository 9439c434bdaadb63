package domain

import (
	"time"

	"github.com/google/uuid"
)

// Unit is a top-level user-owned container (e.g. a course).
type Unit struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subtopic is a titled section within a Unit. Notes holds opaque rich-text
// HTML stored verbatim; it is not parsed or sanitized here.
type Subtopic struct {
	ID        uuid.UUID `json:"id"`
	UnitID    uuid.UUID `json:"unit"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PDF is a stored binary attachment associated with a Subtopic. ObjectKey is
// the internal storage key; responses expose a resolvable URL instead.
type PDF struct {
	ID         uuid.UUID `json:"id"`
	SubtopicID uuid.UUID `json:"subtopic"`
	Title      string    `json:"title,omitempty"`
	ObjectKey  string    `json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// OwnedBy reports whether the unit belongs to the given user. Ownership of
// subtopics and PDFs is derived by walking up to their Unit on every access.
func (u *Unit) OwnedBy(userID uuid.UUID) bool {
	return u.UserID == userID
}
