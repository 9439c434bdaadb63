package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/tendant/course-notes/internal/domain"
)

const (
	claimUserID    = "user_id"
	claimUsername  = "username"
	claimTokenType = "token_type"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenPair holds the bearer credentials issued at login: a short-lived
// access token and a longer-lived refresh token.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Manager issues and verifies HS256 bearer tokens
type Manager struct {
	tokenAuth  *jwtauth.JWTAuth
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager creates a token manager. The secret must not be empty.
func NewManager(secret string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Manager{
		tokenAuth:  jwtauth.New("HS256", []byte(secret), nil),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssuePair issues an access/refresh token pair for the user
func (m *Manager) IssuePair(user *domain.User) (*TokenPair, error) {
	access, err := m.encode(user, tokenTypeAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.encode(user, tokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (m *Manager) encode(user *domain.User, tokenType string, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{
		claimUserID:    user.ID.String(),
		claimUsername:  user.Username,
		claimTokenType: tokenType,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, ttl)

	_, tokenString, err := m.tokenAuth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// VerifyRefresh validates a refresh token and returns the user id it is
// bound to. Access tokens are rejected here: a refresh grant must not be
// satisfiable with a short-lived credential.
func (m *Manager) VerifyRefresh(tokenString string) (uuid.UUID, error) {
	token, err := jwtauth.VerifyToken(m.tokenAuth, tokenString)
	if err != nil || token == nil {
		return uuid.Nil, domain.ErrInvalidToken
	}

	tokenType, _ := token.Get(claimTokenType)
	if tokenType != tokenTypeRefresh {
		return uuid.Nil, domain.ErrInvalidToken
	}

	rawID, ok := token.Get(claimUserID)
	if !ok {
		return uuid.Nil, domain.ErrInvalidToken
	}
	idStr, ok := rawID.(string)
	if !ok {
		return uuid.Nil, domain.ErrInvalidToken
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}
	return id, nil
}

// Verifier returns the middleware that extracts and validates the bearer
// token from the Authorization header.
func (m *Manager) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(m.tokenAuth)
}
