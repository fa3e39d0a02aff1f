package domain

import "time"

// LogLevel classifies activity-log entries.
type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelDebug LogLevel = "debug"
)

// LogLevels lists every valid log level.
func LogLevels() []LogLevel {
	return []LogLevel{LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelDebug}
}

// LogEntry is a persisted activity-log record. UserID is nil for entries
// that cannot be tied to an account (e.g. anonymous failures). Username is
// populated on reads by joining against the users table.
type LogEntry struct {
	ID        string
	Message   string
	Level     LogLevel
	UserID    *string
	Username  *string
	CreatedAt time.Time
}
