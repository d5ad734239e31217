package errors

import (
	"errors"
	"fmt"
)

// Error represents a typed domain error optionally naming the field or
// constraint that was violated.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches two *Error values by code so the predeclared errors act as
// sentinels for errors.Is checks.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Predefined errors for the failure taxonomy.
var (
	ErrNotFound          = New("NOT_FOUND", "record not found")
	ErrDuplicateKey      = New("DUPLICATE_KEY", "unique constraint violated")
	ErrIntegrity         = New("INTEGRITY_VIOLATION", "referential or check constraint violated")
	ErrUnsupportedFormat = New("UNSUPPORTED_FORMAT", "report format not supported")
	ErrStore             = New("STORE_ERROR", "store operation failed")
	ErrValidation        = New("VALIDATION_ERROR", "validation failed")
)

// Duplicate returns a DuplicateKey error naming the offending field.
func Duplicate(field string, cause error) *Error {
	return &Error{Code: ErrDuplicateKey.Code, Message: ErrDuplicateKey.Message, Field: field, Err: cause}
}

// Integrity returns an IntegrityViolation error naming the constraint.
func Integrity(constraint string, cause error) *Error {
	return &Error{Code: ErrIntegrity.Code, Message: ErrIntegrity.Message, Field: constraint, Err: cause}
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// FromError normalises any error into an *Error, defaulting to ErrStore.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrStore.Code, ErrStore.Message)
}

// Convenience predicates, usable alongside errors.Is.
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool { return errors.Is(err, ErrDuplicateKey) }
func IsIntegrity(err error) bool    { return errors.Is(err, ErrIntegrity) }

// FieldOf extracts the violated field from a DuplicateKey or Integrity
// error, or "" when the error carries none.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
