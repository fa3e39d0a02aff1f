package events

import (
	"time"

	"github.com/spec-kit/user-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventLoginFailed    EventType = "login_failed"
	EventUserCreated    EventType = "user_created"
	EventUserUpdated    EventType = "user_updated"
	EventUserDeleted    EventType = "user_deleted"
	EventAccountDeleted EventType = "account_deleted"
	EventConfigUpdated  EventType = "config_updated"
	EventConfigRejected EventType = "config_rejected"
	EventAccessDenied   EventType = "access_denied"
)

// Event represents a domain event emitted by services and middleware.
// ActorID identifies the user the event is attributed to, when known.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserEventPayload accompanies user lifecycle events.
type UserEventPayload struct {
	Username string `json:"username"`
}

// ConfigEventPayload accompanies configuration events.
type ConfigEventPayload struct {
	Key    string `json:"key"`
	Reason string `json:"reason,omitempty"`
}

// AccessDeniedPayload accompanies rejected privileged attempts.
type AccessDeniedPayload struct {
	Username string `json:"username"`
	Path     string `json:"path"`
}

// LoginFailedPayload accompanies failed credential checks.
type LoginFailedPayload struct {
	Identity string `json:"identity"`
}

// AuditLevel maps event types to the activity-log level their audit
// entry is written with.
func (t EventType) AuditLevel() domain.LogLevel {
	switch t {
	case EventLoginFailed, EventAccessDenied, EventConfigRejected:
		return domain.LogLevelError
	default:
		return domain.LogLevelInfo
	}
}
