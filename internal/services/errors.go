package services

import (
	"errors"
	"strings"
)

// Sentinel errors the handler layer maps to HTTP statuses. Services wrap
// them with %w so callers can test with errors.Is.
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrDuplicateID        = errors.New("record with this id already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// isUniqueViolation reports whether err comes from a UNIQUE constraint.
// The sqlite driver exposes no typed error for this, so the message text is
// the contract.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
