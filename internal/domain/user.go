package domain

import (
	"strings"
	"time"
)

// UserRole is the closed set of roles used for access control.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// Roles lists every valid role value.
func Roles() []UserRole {
	return []UserRole{RoleUser, RoleAdmin}
}

// AuthType records how an account was established.
type AuthType string

const (
	AuthTypeLocal  AuthType = "local"
	AuthTypeGoogle AuthType = "google"
)

// AuthTypes lists every valid auth type value.
func AuthTypes() []AuthType {
	return []AuthType{AuthTypeLocal, AuthTypeGoogle}
}

// User is the domain model for accounts managed by the service.
// Email and username are stored lowercased and are globally unique.
type User struct {
	ID           string
	Name         string
	Forename     string
	Email        string
	Username     string
	PasswordHash string
	Role         UserRole
	Avatar       string
	AuthType     AuthType
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName renders "NAME Forename" the way list views display users.
func (u *User) FullName() string {
	forename := u.Forename
	if forename != "" {
		forename = strings.ToUpper(forename[:1]) + strings.ToLower(forename[1:])
	}
	return strings.TrimSpace(u.Name + " " + forename)
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
