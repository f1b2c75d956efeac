package dto

import (
	"time"

	"github.com/campushub/portal-api/internal/models"
)

// UserResponse is the API representation of a portal account.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse maps a user model onto its response DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role.String(),
		Enabled:   user.Enabled,
		CreatedAt: user.CreatedAt,
	}
}

// NewUserResponseSlice maps a collection of users.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}

// UserCreateRequest is the admin payload for creating an account.
type UserCreateRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required"`
}

// UserUpdateRequest is the admin payload for updating an account.
type UserUpdateRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Role    string `json:"role" validate:"required"`
	Enabled bool   `json:"enabled"`
}
