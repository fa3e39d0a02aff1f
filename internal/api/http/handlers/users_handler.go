package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/presence"
	"github.com/spec-kit/user-service/internal/service"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// UsersHandler exposes user administration and self-service endpoints.
type UsersHandler struct {
	users    *service.UserService
	presence *presence.Tracker
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, tracker *presence.Tracker) *UsersHandler {
	return &UsersHandler{users: userService, presence: tracker}
}

// List handles GET /api/users. The response carries the online subject
// ids so list views can annotate presence.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "0"))
	size, _ := strconv.Atoi(c.Query("size", "20"))

	list, err := h.users.List(c.Context(), page, size)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"users":  dto.NewUserResponses(list.Users, c.BaseURL()),
		"count":  list.Count,
		"online": h.presence.Online(),
	})
}

// Create handles POST /api/users (admin).
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("expired_session")
	}

	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.Create(c.Context(), principal.User.ID, service.CreateUserInput{
		Name:     req.Name,
		Forename: req.Forename,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user": dto.NewUserResponse(user, c.BaseURL()),
	})
}

// Update handles PUT /api/users/:id. Role and password fields submitted
// by non-admin callers are dropped by the authorization policy before
// the mutation is applied.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("expired_session")
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.Update(c.Context(), principal.User.ID, c.Params("id"), auth.UserUpdate{
		Name:     req.Name,
		Forename: req.Forename,
		Email:    req.Email,
		Username: req.Username,
		Avatar:   req.Avatar,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user": dto.NewUserResponse(user, c.BaseURL()),
	})
}

// Delete handles DELETE /api/users/:id (admin).
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("expired_session")
	}

	user, err := h.users.Delete(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user": dto.NewUserResponse(user, c.BaseURL()),
	})
}

// GeneratePassword handles GET /api/users/utils/generatePassword (admin).
func (h *UsersHandler) GeneratePassword(c *fiber.Ctx) error {
	password, err := h.users.GeneratePassword()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"password": password})
}

// UpdatePassword handles PUT /api/users/:id/password.
func (h *UsersHandler) UpdatePassword(c *fiber.Ctx) error {
	var req dto.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.users.UpdatePassword(c.Context(), c.Params("id"), req.CurrentPassword, req.NewPassword, req.NewPasswordConfirm); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}

// DeleteAccount handles DELETE /api/users/delete/account.
func (h *UsersHandler) DeleteAccount(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("expired_session")
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.users.DeleteAccount(c.Context(), principal.User.ID, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "account deleted"})
}

// AuthTypeStats handles GET /api/users/stats/authTypes (admin).
func (h *UsersHandler) AuthTypeStats(c *fiber.Ctx) error {
	stats, err := h.users.AuthTypeStats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
