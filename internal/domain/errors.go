package domain

import "errors"

// ErrNotFound reports that a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or invalid field. The message is safe to
// show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation builds a ValidationError.
func Validation(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConflictError reports a state-guard violation: claiming an already assigned
// delivery, completing an order without a product link, duplicate unique
// values. The message is specific enough for the caller to present directly.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflict builds a ConflictError.
func Conflict(message string) error {
	return &ConflictError{Message: message}
}

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
