package domain

import "time"

// Ticket status values. The store enforces the same set with a CHECK constraint.
const (
	StatusOpen       = "open"
	StatusInProgress = "inprogress"
	StatusClosed     = "closed"
)

// Ticket priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Ticket is the domain entity. It does not depend on Gin, Postgres or Redis.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Priority    string
	Status      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidStatus reports whether s is one of the ticket status values.
func ValidStatus(s string) bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusClosed
}

// ValidPriority reports whether p is one of the ticket priority values.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}
