package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/service"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// ConfigHandler exposes runtime configuration endpoints.
type ConfigHandler struct {
	config *service.ConfigService
}

// NewConfigHandler constructs handler.
func NewConfigHandler(configService *service.ConfigService) *ConfigHandler {
	return &ConfigHandler{config: configService}
}

// Get handles GET /api/config?keys=a,b,c.
func (h *ConfigHandler) Get(c *fiber.Ctx) error {
	raw := c.Query("keys")
	keys := []string{}
	for _, key := range strings.Split(raw, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}

	settings, err := h.config.Get(c.Context(), keys)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"config": dto.NewSettingResponses(settings)})
}

// Update handles PUT /api/config (admin).
func (h *ConfigHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("expired_session")
	}

	var req dto.UpdateConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.config.Update(c.Context(), principal.User.ID, req.Keys, req.Config); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "config updated"})
}
