package domain

import "errors"

// Error types
var (
	// ErrNotFound indicates an entity is absent or invisible to the caller.
	// Records owned by another user are reported as not found, never as
	// forbidden, so foreign ids do not leak existence.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken indicates a registration with a duplicate username
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials indicates a failed login. It is returned for
	// unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates a missing, malformed or expired token
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidInput indicates a request payload failed shape validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorage indicates an object storage backend failure
	ErrStorage = errors.New("storage backend failure")
)
