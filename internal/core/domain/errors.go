package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced id has no matching document.
	ErrNotFound = errors.New("not found")
	// ErrValidation means input was rejected before or by storage.
	ErrValidation = errors.New("validation failed")
	// ErrConflict means a unique field value already exists.
	ErrConflict = errors.New("duplicate field value")
	// ErrUpstream means a collaborator (database, geocoder) failed.
	ErrUpstream = errors.New("upstream failure")
)

// Error carries a human-readable message for a taxonomy sentinel.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Is matches the sentinel kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// NotFound returns an ErrNotFound with a formatted message.
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Invalid returns an ErrValidation with a formatted message.
func Invalid(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns an ErrConflict with a formatted message.
func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// Upstream wraps a collaborator failure.
func Upstream(op string, err error) error {
	return &Error{Kind: ErrUpstream, Message: op, Err: err}
}

// Message returns the human-readable part of err for API responses.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
