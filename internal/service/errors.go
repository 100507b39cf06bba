package service

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound means the id has no matching row.
	ErrNotFound = errors.New("ticket not found")
	// ErrConflict means the store reported a uniqueness violation.
	ErrConflict = errors.New("ticket with similar data already exists")
	// ErrUnavailable means the store cannot be reached.
	ErrUnavailable = errors.New("database connection failed")
	// ErrNoFields means an update supplied no recognized fields.
	ErrNoFields = errors.New("no valid fields to update")
)

// ValidationError carries every collected rule violation, in field order.
type ValidationError []string

func (e ValidationError) Error() string {
	return "validation failed: " + strings.Join(e, "; ")
}

// Details returns the individual violation messages.
func (e ValidationError) Details() []string { return []string(e) }
