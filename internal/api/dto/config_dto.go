package dto

import (
	"time"

	"github.com/spec-kit/user-service/internal/domain"
)

// SettingResponse is the wire representation of one config entry.
type SettingResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSettingResponses maps domain settings.
func NewSettingResponses(settings []*domain.Setting) []SettingResponse {
	out := make([]SettingResponse, 0, len(settings))
	for _, setting := range settings {
		out = append(out, SettingResponse{
			Key:       setting.Key,
			Value:     setting.Value,
			UpdatedAt: setting.UpdatedAt,
		})
	}
	return out
}

// UpdateConfigRequest lists the keys to update and the new values.
type UpdateConfigRequest struct {
	Keys   []string          `json:"keys"`
	Config map[string]string `json:"config"`
}

// LogResponse is the wire representation of one activity-log entry.
type LogResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Level     string    `json:"level"`
	UserID    *string   `json:"user_id,omitempty"`
	Username  *string   `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewLogResponses maps domain log entries.
func NewLogResponses(entries []*domain.LogEntry) []LogResponse {
	out := make([]LogResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, LogResponse{
			ID:        entry.ID,
			Message:   entry.Message,
			Level:     string(entry.Level),
			UserID:    entry.UserID,
			Username:  entry.Username,
			CreatedAt: entry.CreatedAt,
		})
	}
	return out
}
