package service

import (
	"errors"

	"github.com/campushub/portal-api/internal/models"
)

// ErrOwnershipViolation indicates a student tried to read another
// student's records.
var ErrOwnershipViolation = errors.New("students can only access their own records")

// Identity is the authenticated caller as resolved from the request token.
type Identity struct {
	ID   uint
	Role models.Role
}

// AccessPolicy decides whether a caller may read records belonging to a
// given student.
type AccessPolicy interface {
	EnforceOwnership(identity Identity, targetStudentID uint) error
}

type accessPolicy struct{}

// NewAccessPolicy constructs the ownership policy.
func NewAccessPolicy() AccessPolicy {
	return accessPolicy{}
}

// EnforceOwnership fails when a student-role caller targets a different
// student. Faculty and admin callers pass; route-level role checks have
// already gated them.
func (accessPolicy) EnforceOwnership(identity Identity, targetStudentID uint) error {
	switch identity.Role {
	case models.RoleStudent:
		if identity.ID != targetStudentID {
			return ErrOwnershipViolation
		}
		return nil
	case models.RoleFaculty, models.RoleAdmin:
		return nil
	default:
		return ErrOwnershipViolation
	}
}
