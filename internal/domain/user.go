package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. PasswordHash is a one-way bcrypt
// hash and is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
