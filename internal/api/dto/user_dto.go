package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/user-service/internal/domain"
)

// UserResponse is the wire representation of a user. Password hashes
// never leave the service.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Forename  string    `json:"forename"`
	FullName  string    `json:"fullname"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar"`
	AuthType  string    `json:"auth_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse maps a domain user, resolving relative avatar paths
// against the request's base URL.
func NewUserResponse(user *domain.User, baseURL string) UserResponse {
	avatar := user.Avatar
	if avatar != "" && strings.HasPrefix(avatar, "/") {
		avatar = strings.TrimSuffix(baseURL, "/") + avatar
	}
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Forename:  user.Forename,
		FullName:  user.FullName(),
		Email:     user.Email,
		Username:  user.Username,
		Role:      string(user.Role),
		Avatar:    avatar,
		AuthType:  string(user.AuthType),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// NewUserResponses maps a slice of domain users.
func NewUserResponses(users []*domain.User, baseURL string) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user, baseURL))
	}
	return out
}

// CreateUserRequest is the admin user-creation payload.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Forename string `json:"forename"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserRequest is the partial-update payload. Nil fields are left
// unchanged; role and password are dropped for non-admin callers.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Forename *string `json:"forename"`
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// UpdatePasswordRequest is the self-service password-change payload.
type UpdatePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	NewPasswordConfirm string `json:"newPasswordConfirm"`
}

// DeleteAccountRequest confirms account deletion with the password.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}
