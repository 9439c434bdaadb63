package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/course-notes/internal/auth"
	"github.com/tendant/course-notes/internal/domain"
	"github.com/tendant/course-notes/internal/repository"
)

// AuthService handles registration, login and token refresh
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.Manager
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserRepository, tokens *auth.Manager) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// Session is the result of a successful login or refresh
type Session struct {
	Tokens   *auth.TokenPair
	Username string
}

// Register creates a new user with a one-way-hashed credential. No token is
// issued; the caller must log in separately.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user registered", "username", username)
	return user, nil
}

// Login verifies the credential and issues a token pair. Unknown users and
// wrong passwords yield the same error so usernames cannot be probed.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return &Session{Tokens: tokens, Username: user.Username}, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return &Session{Tokens: tokens, Username: user.Username}, nil
}
