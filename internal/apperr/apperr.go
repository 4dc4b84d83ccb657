// Package apperr defines the typed error taxonomy shared by services and
// the transport layer. Services return exactly one of these kinds for any
// rejected mutation; the transport maps each kind to a distinct status.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindValidation marks a malformed or out-of-range field. Rejected
	// before any write.
	KindValidation Kind = iota
	// KindAuthorization marks an actor lacking the role an action requires.
	KindAuthorization
	// KindNotFound marks a missing task, project, stage or user.
	KindNotFound
	// KindInvalidOperation marks a structurally valid request the current
	// state forbids, such as deleting a stage that still holds tasks.
	KindInvalidOperation
)

// Error is a typed application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Authorization builds a KindAuthorization error.
func Authorization(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidOperation builds a KindInvalidOperation error.
func InvalidOperation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying cause to err and returns it.
func (e *Error) Wrap(cause error) *Error {
	e.Err = cause
	return e
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e := As(err)
	return e != nil && e.Kind == kind
}

// As extracts an *Error from err's chain, or nil.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
