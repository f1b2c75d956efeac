package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/campushub/portal-api/internal/dto"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/repository"
)

var (
	// ErrUserNotFound indicates the referenced account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidRole indicates an unrecognised role value.
	ErrInvalidRole = errors.New("invalid role")
	// ErrNotStudent indicates the referenced account is not a student.
	ErrNotStudent = errors.New("user is not a student")
)

// UserService manages portal accounts.
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	ListByRole(ctx context.Context, role string) ([]dto.UserResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, id uint, payload dto.UserUpdateRequest, actor ActivityActor) (dto.UserResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
	// ResolveStudent returns the account with the given id, failing when it
	// is absent or does not carry the student role.
	ResolveStudent(ctx context.Context, id uint) (models.User, error)
}

type userService struct {
	users     repository.UserRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(users repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) ListByRole(ctx context.Context, roleValue string) ([]dto.UserResponse, error) {
	role, err := models.ParseRole(roleValue)
	if err != nil {
		return nil, ErrInvalidRole
	}

	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	role, err := models.ParseRole(payload.Role)
	if err != nil {
		return dto.UserResponse{}, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if err := s.ensureEmailAvailable(ctx, email, 0); err != nil {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:         strings.TrimSpace(payload.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Enabled:      true,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", role.String()).Msg("user created")
	s.recordActivity(ctx, ActivityActor{ID: user.ID, Role: role}, user.ID, "user.created", map[string]interface{}{
		"email": user.Email,
		"role":  role.String(),
	})

	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, id uint, payload dto.UserUpdateRequest, actor ActivityActor) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	role, err := models.ParseRole(payload.Role)
	if err != nil {
		return dto.UserResponse{}, ErrInvalidRole
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if err := s.ensureEmailAvailable(ctx, email, id); err != nil {
		return dto.UserResponse{}, err
	}

	user.Name = strings.TrimSpace(payload.Name)
	user.Email = email
	user.Role = role
	user.Enabled = payload.Enabled

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user updated")
	s.recordActivity(ctx, actor, user.ID, "user.updated", map[string]interface{}{
		"email": user.Email,
		"role":  role.String(),
	})

	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info().Uint("user_id", id).Msg("user deleted")
	s.recordActivity(ctx, actor, id, "user.deleted", nil)

	return nil
}

func (s *userService) ResolveStudent(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	if !user.IsStudent() {
		return models.User{}, ErrNotStudent
	}

	return user, nil
}

func (s *userService) ensureEmailAvailable(ctx context.Context, email string, currentID uint) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if existing.ID != currentID {
		return ErrEmailTaken
	}
	return nil
}

func (s *userService) recordActivity(ctx context.Context, actor ActivityActor, entityID uint, action string, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	id := entityID
	if _, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "user",
		EntityID:   &id,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}
