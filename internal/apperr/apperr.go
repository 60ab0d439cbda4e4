// Package apperr defines the error kinds the order workflow reports to
// callers and how each kind maps onto an HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindConflict   Kind = "CONFLICT"
	KindNotFound   Kind = "NOT_FOUND"
	KindStock      Kind = "STOCK"
	KindState      Kind = "STATE"
	KindUpstream   Kind = "UPSTREAM"
	KindInternal   Kind = "INTERNAL"

	// Raised by the HTTP layer only.
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
)

type Error struct {
	Kind    Kind
	Message string
	IDs     []string
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

func New(kind Kind, msg string, ids ...string) *Error {
	return &Error{Kind: kind, Message: msg, IDs: ids}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func State(format string, args ...any) *Error {
	return New(KindState, fmt.Sprintf(format, args...))
}

// Stock reports an unavailable line. ids identifies the offending product.
func Stock(msg string, ids ...string) *Error {
	return New(KindStock, msg, ids...)
}

func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindStock:
		return http.StatusBadRequest
	case KindConflict, KindState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
