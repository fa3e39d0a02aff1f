package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/service"
)

// LogsHandler exposes the admin activity-log endpoints.
type LogsHandler struct {
	audit *service.AuditService
}

// NewLogsHandler constructs handler.
func NewLogsHandler(auditService *service.AuditService) *LogsHandler {
	return &LogsHandler{audit: auditService}
}

// List handles GET /api/logs.
func (h *LogsHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "0"))
	size, _ := strconv.Atoi(c.Query("size", "20"))

	list, err := h.audit.List(c.Context(), page, size)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"logs":  dto.NewLogResponses(list.Entries),
		"count": list.Count,
	})
}

// Levels handles GET /api/logs/log-levels.
func (h *LogsHandler) Levels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"logLevels": h.audit.Levels()})
}

// Delete handles DELETE /api/logs/:id.
func (h *LogsHandler) Delete(c *fiber.Ctx) error {
	if err := h.audit.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "log deleted"})
}

// DeleteAll handles DELETE /api/logs.
func (h *LogsHandler) DeleteAll(c *fiber.Ctx) error {
	if err := h.audit.DeleteAll(c.Context()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "logs cleared"})
}
