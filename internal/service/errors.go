package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/medimind-backend/internal/gamification"
	"github.com/vcscsvcscs/medimind-backend/internal/repository"
)

var (
	// ErrNotFound is returned when a user or medicine does not exist
	ErrNotFound = repository.ErrNotFound
	// ErrAlreadyClaimed is returned when today's reward was already claimed
	ErrAlreadyClaimed = gamification.ErrAlreadyClaimed
)

// ValidationError reports invalid caller input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err means the requested record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// requireID rejects empty and malformed IDs. Malformed IDs cannot exist, so they are reported as not found.
func requireID(field, id string) error {
	if id == "" {
		return invalid(field, "is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s %s: %w", field, id, ErrNotFound)
	}
	return nil
}
