package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/course-notes/internal/auth"
	"github.com/tendant/course-notes/internal/domain"
	"github.com/tendant/course-notes/internal/repository/memory"
	"github.com/tendant/course-notes/internal/service"
)

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	manager, err := auth.NewManager("test-secret", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	return service.NewAuthService(memory.New(), manager)
}

func TestAuthService_Register(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "", "other")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "", "s3cret")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Register(ctx, "alice", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthService_Login(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "", "s3cret")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)
	assert.NotEmpty(t, session.Tokens.Access)
	assert.NotEmpty(t, session.Tokens.Refresh)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "", "s3cret")
	require.NoError(t, err)

	// Wrong password and unknown user yield the same error
	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Refresh(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "", "s3cret")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, session.Tokens.Refresh)
	require.NoError(t, err)
	assert.Equal(t, "alice", refreshed.Username)
	assert.NotEmpty(t, refreshed.Tokens.Access)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "", "s3cret")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, session.Tokens.Access)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
