package domain

import "time"

// Setting is a runtime configuration entry, keyed uniquely.
type Setting struct {
	ID        string
	Key       string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
