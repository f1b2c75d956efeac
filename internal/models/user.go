package models

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies the portal role assigned to a user account.
type Role string

const (
	// RoleStudent can submit assignments and read their own records.
	RoleStudent Role = "STUDENT"
	// RoleFaculty can mark attendance and grade submissions.
	RoleFaculty Role = "FACULTY"
	// RoleAdmin can manage users and courses.
	RoleAdmin Role = "ADMIN"
)

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleFaculty:
		return RoleFaculty, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role: %q", value)
	}
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// User represents a portal account: student, faculty member, or administrator.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null" json:"role"`
	Enabled      bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsStudent reports whether the account carries the student role.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}
