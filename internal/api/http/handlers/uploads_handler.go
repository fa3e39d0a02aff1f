package handlers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/avatar"
	"github.com/spec-kit/user-service/internal/service"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

var allowedAvatarTypes = map[string]struct{}{
	"image/jpeg":    {},
	"image/png":     {},
	"image/gif":     {},
	"image/svg+xml": {},
}

// UploadsHandler exposes the avatar upload endpoint.
type UploadsHandler struct {
	users    *service.UserService
	avatars  *avatar.Store
	maxBytes int64
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(userService *service.UserService, avatars *avatar.Store, maxBytes int64) *UploadsHandler {
	return &UploadsHandler{users: userService, avatars: avatars, maxBytes: maxBytes}
}

// UpdateAvatar handles POST /api/uploads/avatar/:id. The file must be a
// jpeg/png/gif/svg image no larger than the configured limit; the old
// avatar file is removed before the new URL is stored.
func (h *UploadsHandler) UpdateAvatar(c *fiber.Ctx) error {
	targetID := c.Params("id")
	if _, err := h.users.Get(c.Context(), targetID); err != nil {
		return err
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return apperrors.NewValidationError("no file provided", nil)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if _, ok := allowedAvatarTypes[contentType]; !ok {
		return apperrors.NewValidationError("invalid file type", map[string]any{"content_type": contentType})
	}
	if fileHeader.Size > h.maxBytes {
		return apperrors.NewValidationError("file too large", map[string]any{"max_bytes": h.maxBytes})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return apperrors.MapError(err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxBytes+1))
	if err != nil {
		return apperrors.MapError(err)
	}
	if int64(len(data)) > h.maxBytes {
		return apperrors.NewValidationError("file too large", map[string]any{"max_bytes": h.maxBytes})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = ".png"
	}
	avatarPath, err := h.avatars.Save(targetID, ext, data)
	if err != nil {
		return apperrors.MapError(err)
	}

	user, err := h.users.SetAvatar(c.Context(), targetID, avatarPath)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "avatar updated",
		"user":    dto.NewUserResponse(user, c.BaseURL()),
	})
}
