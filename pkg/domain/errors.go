package domain

import (
	"errors"
	"sort"
	"strings"
)

// Authentication errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)

// Resource errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrTenantNotFound = errors.New("tenant not found")
	ErrPostNotFound   = errors.New("post not found")
	ErrConfigNotFound = errors.New("config not found")
)

// Validation errors
var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrWeakPassword     = errors.New("password does not meet requirements")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidJSON      = errors.New("invalid JSON")
	ErrInvalidRole      = errors.New("invalid role")
)

// Two-phase delete errors
var (
	// ErrOrphanedImage is returned when a post's image was removed but the post
	// record could not be deleted afterwards.
	ErrOrphanedImage = errors.New("image deleted but record delete failed")
)

// ValidationError collects per-field message keys for a form submission.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message key for a field. The first key for a field wins.
func (e *ValidationError) Add(field, key string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = key
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Err returns nil when no field failed, so callers can `return v.Err()`.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
