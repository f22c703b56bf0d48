// Package apperr holds the error kinds the HTTP layer maps to status codes.
package apperr

import "errors"

var (
	// ErrNotFound marks errors for an unknown id or key (404).
	ErrNotFound = errors.New("resource not found")
	// ErrBusinessRule marks errors for a violated business rule (400).
	ErrBusinessRule = errors.New("business rule violation")
	// ErrConflict marks errors for a request that clashes with work in progress (409).
	ErrConflict = errors.New("conflict")
)

// Error is a domain error with a user-facing message and a kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NotFound returns an error of kind ErrNotFound.
func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// BusinessRule returns an error of kind ErrBusinessRule.
func BusinessRule(message string) *Error {
	return &Error{Kind: ErrBusinessRule, Message: message}
}

// Conflict returns an error of kind ErrConflict.
func Conflict(message string) *Error {
	return &Error{Kind: ErrConflict, Message: message}
}

// Message returns the user-facing message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return fallback
}
