package services

import (
	"errors"

	"github.com/anonto42/recipehub/backend/internal/repositories"
)

// Kind classifies a service failure. The HTTP boundary maps kinds to status codes.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindValidation
	KindUnauthorized
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is a typed failure carrying its kind and a short description
type Error struct {
	Kind    Kind
	Message string

	kindOnly bool
}

func (e *Error) Error() string { return e.Message }

// Is matches another *Error of the same kind. Kind sentinels match any message;
// other errors also need an equal message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t.Kind != e.Kind {
		return false
	}
	return t.kindOnly || t.Message == e.Message
}

var (
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found", kindOnly: true}
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "forbidden", kindOnly: true}
	ErrValidation   = &Error{Kind: KindValidation, Message: "validation failed", kindOnly: true}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized", kindOnly: true}
	ErrConflict     = &Error{Kind: KindConflict, Message: "conflict", kindOnly: true}

	// ErrSelfFollow is the validation failure for a user following itself
	ErrSelfFollow = &Error{Kind: KindValidation, Message: "You cannot follow yourself"}
)

// NotFound reports that entity does not exist
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Forbidden reports a failed ownership or role check
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// Validation reports malformed input
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Unauthorized reports missing or wrong credentials
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Conflict reports a uniqueness violation
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// notFoundOr converts repositories.ErrNotFound to a NotFound error for entity and passes others through
func notFoundOr(err error, entity string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound(entity)
	}
	return err
}
