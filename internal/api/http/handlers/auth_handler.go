package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/service"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, exp, err := h.auth.Register(c.Context(), service.RegisterInput{
		Name:            req.Name,
		Forename:        req.Forename,
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		PhotoURL:        req.PhotoURL,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user": dto.NewUserResponse(user, c.BaseURL()),
		"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	identity := req.Username
	if identity == "" {
		identity = req.Email
	}

	user, token, exp, err := h.auth.Login(c.Context(), identity, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user": dto.NewUserResponse(user, c.BaseURL()),
		"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// GoogleLogin handles POST /api/auth/login/google.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, exp, err := h.auth.GoogleSignIn(c.Context(), req.Email)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user": dto.NewUserResponse(user, c.BaseURL()),
		"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Logout handles GET /api/auth/logout. Tokens are stateless; the client
// discards its copy.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var id string
	if principal != nil {
		id = principal.User.ID
	}
	if err := h.auth.Logout(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "logout successful"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("expired_session")
	}

	user, err := h.auth.Me(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user, c.BaseURL()))
}
