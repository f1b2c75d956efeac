package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campushub/portal-api/internal/dto"
	"github.com/campushub/portal-api/internal/models"
)

func testAuthService(t *testing.T) (AuthService, *memoryUserRepo) {
	t.Helper()

	repo := newMemoryUserRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	users := NewUserService(repo, validate, nil, logger)
	return NewAuthService(repo, users, validate, "test-secret", time.Hour, logger), repo
}

func registerAccount(t *testing.T, svc AuthService, role string) dto.UserResponse {
	t.Helper()
	user, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Alice Chen",
		Email:    "alice@example.edu",
		Password: "secret123",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func TestAuthLoginRoundTrip(t *testing.T) {
	svc, _ := testAuthService(t)
	registered := registerAccount(t, svc, "STUDENT")

	response, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "ALICE@example.edu",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, response.Token)
	require.Equal(t, "Bearer", response.TokenType)
	require.Equal(t, registered.ID, response.UserID)
	require.Equal(t, "STUDENT", response.Role)
	require.Equal(t, "/student-dashboard", response.RedirectPath)

	identity, err := svc.ValidateToken(response.Token)
	require.NoError(t, err)
	require.Equal(t, registered.ID, identity.ID)
	require.Equal(t, models.RoleStudent, identity.Role)
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := testAuthService(t)
	registerAccount(t, svc, "FACULTY")

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "alice@example.edu",
		Password: "wrong-password",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@example.edu",
		Password: "secret123",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthLoginRejectsDisabledAccount(t *testing.T) {
	svc, repo := testAuthService(t)
	registered := registerAccount(t, svc, "STUDENT")

	user := repo.users[registered.ID]
	user.Enabled = false
	repo.users[registered.ID] = user

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "alice@example.edu",
		Password: "secret123",
	})
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthValidateTokenRejectsForgery(t *testing.T) {
	svc, _ := testAuthService(t)
	registerAccount(t, svc, "STUDENT")

	response, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "alice@example.edu",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(newMemoryUserRepo(), nil, validator.New(validator.WithRequiredStructEnabled()), "different-secret", time.Hour, zerolog.New(io.Discard))
	_, err = other.ValidateToken(response.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthTokenExpiry(t *testing.T) {
	repo := newMemoryUserRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	users := NewUserService(repo, validate, nil, logger)

	svc := NewAuthService(repo, users, validate, "test-secret", -time.Minute, logger)
	registerAccount(t, svc, "STUDENT")

	response, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "alice@example.edu",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(response.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
