package models

import "time"

// DefaultToastDuration is how long a toast stays visible unless overridden.
const DefaultToastDuration = 3000 * time.Millisecond

// Toast is a short-lived user notification.
type Toast struct {
	ID        string
	Text      string
	IsError   bool
	Duration  time.Duration
	CreatedAt time.Time
}
