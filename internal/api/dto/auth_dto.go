package dto

import "time"

// RegisterRequest is the registration payload. PhotoURL is present on
// Google sign-ups only.
type RegisterRequest struct {
	Name            string `json:"name"`
	Forename        string `json:"forename"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	PhotoURL        string `json:"photoURL"`
}

// LoginRequest accepts a username or email plus password.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginRequest is the Google sign-in payload.
type GoogleLoginRequest struct {
	Email string `json:"email"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
