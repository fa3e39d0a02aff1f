package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// LogList bundles a page of log entries with the total count.
type LogList struct {
	Entries []*domain.LogEntry
	Count   int
}

// AuditService persists activity-log entries for published events and
// serves the admin log endpoints. Audit writes are a side effect of the
// requests that trigger them: when a write fails the error is logged
// here and never reaches the client.
type AuditService struct {
	logs       repository.LogRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService builds the service.
func NewAuditService(logs repository.LogRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{logs: logs, dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes the audit writer to every event type that
// produces an activity-log entry.
func (s *AuditService) RegisterHandlers() {
	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventLoginFailed,
		events.EventUserCreated,
		events.EventUserUpdated,
		events.EventUserDeleted,
		events.EventAccountDeleted,
		events.EventConfigUpdated,
		events.EventConfigRejected,
		events.EventAccessDenied,
	} {
		s.dispatcher.Subscribe(eventType, s.record)
	}
}

func (s *AuditService) record(ctx context.Context, event events.Event) error {
	entry := &domain.LogEntry{
		Message: formatMessage(event),
		Level:   event.Type.AuditLevel(),
		UserID:  event.ActorID,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Error("audit log write failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
	}
	return nil
}

// List returns log entries newest first with the total count.
func (s *AuditService) List(ctx context.Context, page, size int) (*LogList, error) {
	entries, err := s.logs.List(ctx, page, size)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	count, err := s.logs.Count(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LogList{Entries: entries, Count: count}, nil
}

// Delete removes one log entry.
func (s *AuditService) Delete(ctx context.Context, id string) error {
	if err := s.logs.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewValidationError("log not found", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// DeleteAll clears the activity log.
func (s *AuditService) DeleteAll(ctx context.Context) error {
	if err := s.logs.DeleteAll(ctx); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Levels lists every valid log level.
func (s *AuditService) Levels() []domain.LogLevel {
	return domain.LogLevels()
}

func formatMessage(event events.Event) string {
	switch payload := event.Payload.(type) {
	case events.UserEventPayload:
		switch event.Type {
		case events.EventUserRegistered:
			return fmt.Sprintf("New user %s registered successfully", payload.Username)
		case events.EventUserCreated:
			return fmt.Sprintf("User '%s' created successfully", payload.Username)
		case events.EventUserUpdated:
			return fmt.Sprintf("User '%s' updated successfully", payload.Username)
		case events.EventUserDeleted:
			return fmt.Sprintf("User '%s' deleted successfully", payload.Username)
		case events.EventAccountDeleted:
			return fmt.Sprintf("User '%s' deleted their account", payload.Username)
		}
	case events.LoginFailedPayload:
		return "Invalid credentials while trying to login"
	case events.AccessDeniedPayload:
		return fmt.Sprintf("User %s attempted to access a restricted route", payload.Username)
	case events.ConfigEventPayload:
		if event.Type == events.EventConfigUpdated {
			return fmt.Sprintf("Configuration updated for key : %s", payload.Key)
		}
		return payload.Reason
	}
	return string(event.Type)
}
