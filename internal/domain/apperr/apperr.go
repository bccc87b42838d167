// Package apperr defines the failure kinds every scheduling operation reports.
//
// Services return *Error values; callers match them with errors.Is against the
// exported sentinels, which compare by Kind only.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindPermissionDenied    Kind = "permission_denied"
	KindInvalidRange        Kind = "invalid_range"
	KindInvalidState        Kind = "invalid_state"
	KindConflict            Kind = "conflict"
	KindNotFound            Kind = "not_found"
	KindInsufficientBalance Kind = "insufficient_balance"
)

var (
	ErrPermissionDenied    = &Error{Kind: KindPermissionDenied, Message: "permission denied"}
	ErrInvalidRange        = &Error{Kind: KindInvalidRange, Message: "invalid range"}
	ErrInvalidState        = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrConflict            = &Error{Kind: KindConflict, Message: "conflict"}
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInsufficientBalance = &Error{Kind: KindInsufficientBalance, Message: "insufficient balance"}
)

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

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so wrapped errors still match the sentinels.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func PermissionDenied(message string) *Error { return New(KindPermissionDenied, message) }

func InvalidRange(message string) *Error { return New(KindInvalidRange, message) }

func InvalidState(message string) *Error { return New(KindInvalidState, message) }

func Conflict(message string) *Error { return New(KindConflict, message) }

func NotFound(message string) *Error { return New(KindNotFound, message) }

func InsufficientBalance(message string) *Error { return New(KindInsufficientBalance, message) }

// KindOf returns the kind carried by err, or "" for errors outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the user-facing reason for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
