package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/campushub/portal-api/internal/dto"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/repository"
)

var (
	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates login against a disabled account.
	ErrAccountDisabled = errors.New("account is disabled")
	// ErrInvalidToken indicates a malformed, forged or expired token.
	ErrInvalidToken = errors.New("token is invalid or expired")
)

// AuthService issues and validates stateless portal tokens.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	ValidateToken(token string) (Identity, error)
	CurrentUser(ctx context.Context, userID uint) (dto.UserResponse, error)
}

type authService struct {
	users     repository.UserRepository
	userSvc   UserService
	validator *validator.Validate
	secret    []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users repository.UserRepository, userSvc UserService, validate *validator.Validate, secret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		userSvc:   userSvc,
		validator: validate,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error) {
	return s.userSvc.Create(ctx, dto.UserCreateRequest{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Role:     payload.Role,
	})
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	if !user.Enabled {
		return dto.LoginResponse{}, ErrAccountDisabled
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role.String()).Msg("user logged in")

	return dto.LoginResponse{
		Token:        token,
		TokenType:    "Bearer",
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role.String(),
		RedirectPath: redirectPathForRole(user.Role),
	}, nil
}

func (s *authService) issueToken(user models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role.String(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken parses and verifies a token string, returning the caller
// identity encoded in it.
func (s *authService) ValidateToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	subject, ok := claims["sub"].(float64)
	if !ok || subject < 0 {
		return Identity{}, ErrInvalidToken
	}

	roleClaim, _ := claims["role"].(string)
	role, err := models.ParseRole(roleClaim)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{ID: uint(subject), Role: role}, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func redirectPathForRole(role models.Role) string {
	switch role {
	case models.RoleStudent:
		return "/student-dashboard"
	case models.RoleFaculty:
		return "/faculty-dashboard"
	case models.RoleAdmin:
		return "/admin-dashboard"
	default:
		return "/"
	}
}
