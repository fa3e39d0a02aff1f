package auth

import (
	"strings"

	"github.com/spec-kit/user-service/internal/domain"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// UserUpdate carries the mutable fields of a user update request.
// Nil pointers mean "leave unchanged". Password is the plaintext value
// submitted by the caller; hashing happens in the service layer.
type UserUpdate struct {
	Name     *string
	Forename *string
	Email    *string
	Username *string
	Avatar   *string
	Role     *string
	Password *string
}

// FilterUpdate applies the admin authorization policy to an update.
// Self-service callers may change name, forename, username, email, and
// avatar; role and password are silently dropped for them rather than
// rejected. Admin callers keep every field, but role values outside the
// closed enumeration fail with an invalid-role error.
func FilterUpdate(actorRole domain.UserRole, update UserUpdate) (UserUpdate, error) {
	if actorRole != domain.RoleAdmin {
		update.Role = nil
		update.Password = nil
		return update, nil
	}

	if update.Role != nil {
		if _, err := ParseRole(*update.Role); err != nil {
			return UserUpdate{}, err
		}
	}
	return update, nil
}

// ParseRole validates a role value against the closed enumeration.
func ParseRole(value string) (domain.UserRole, error) {
	role := domain.UserRole(strings.ToLower(value))
	for _, known := range domain.Roles() {
		if role == known {
			return role, nil
		}
	}
	return "", apperrors.NewInvalidRole(value)
}

// CanAdminister reports whether the actor may perform admin-only
// mutations: setting roles or passwords on other accounts, creating or
// deleting users, clearing logs, and editing global configuration.
func CanAdminister(actor *domain.User) bool {
	return actor != nil && actor.IsAdmin()
}
