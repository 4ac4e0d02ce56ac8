package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports a bad input shape or range (maps to 400)
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

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a missing record (maps to 404). The response body stays
// generic so callers cannot distinguish a bad id format from a missing record.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFound(resource string, id uint) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidStateError reports an operation not legal for the record's current
// status (maps to 409)
type InvalidStateError struct {
	Current   string
	Attempted string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a record in status %q", e.Attempted, e.Current)
}

func NewInvalidState(current, attempted string) error {
	return &InvalidStateError{Current: current, Attempted: attempted}
}

// AccessDeniedError reports a scope or permission failure (maps to 403). The
// message never names the required permission.
type AccessDeniedError struct{}

func (e *AccessDeniedError) Error() string { return "access denied" }

func NewAccessDenied() error { return &AccessDeniedError{} }

// StoreError wraps an underlying persistence failure (maps to 500, retryable
// by the caller)
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store failure: %v", e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

func WrapStore(err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Err: err}
}

// Classification helpers for handlers

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}

func IsAccessDenied(err error) bool {
	var target *AccessDeniedError
	return errors.As(err, &target)
}
