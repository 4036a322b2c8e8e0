// Package apperr defines the error taxonomy shared by every layer.
//
// Errors carry a Kind so callers can branch with the Is* predicates instead of
// matching on message text. Kinds map to propagation policy: Authentication,
// Authorization and Validation surface immediately; Upstream and Parse during
// analysis leave the check-in stored and retriable.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindValidation     Kind = "validation"
	KindUpstream       Kind = "upstream"
	KindParse          Kind = "parse"
)

// Error is a classified application error.
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

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Authentication reports a missing or unknown principal.
func Authentication(format string, args ...any) error {
	return newf(KindAuthentication, format, args...)
}

// Authorization reports a role or permission that is insufficient for the operation.
func Authorization(format string, args ...any) error {
	return newf(KindAuthorization, format, args...)
}

// NotFound reports a missing entity.
func NotFound(format string, args ...any) error {
	return newf(KindNotFound, format, args...)
}

// Conflict reports a lost race, a singleton collision or a duplicate row.
func Conflict(format string, args ...any) error {
	return newf(KindConflict, format, args...)
}

// Validation reports a malformed request.
func Validation(format string, args ...any) error {
	return newf(KindValidation, format, args...)
}

// Upstream wraps a failure of an external dependency (oracle, notification gateway).
func Upstream(err error, format string, args ...any) error {
	e := newf(KindUpstream, format, args...)
	e.Err = err
	return e
}

// Parse reports an oracle reply that does not satisfy the response contract.
func Parse(format string, args ...any) error {
	return newf(KindParse, format, args...)
}

// Wrap attaches kind to err, keeping err in the chain.
func Wrap(kind Kind, err error, format string, args ...any) error {
	e := newf(kind, format, args...)
	e.Err = err
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsAuthentication reports whether err is an authentication failure.
func IsAuthentication(err error) bool { return KindOf(err) == KindAuthentication }

// IsAuthorization reports whether err is an authorization failure.
func IsAuthorization(err error) bool { return KindOf(err) == KindAuthorization }

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err is a conflict.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsUpstream reports whether err is an upstream dependency failure.
func IsUpstream(err error) bool { return KindOf(err) == KindUpstream }

// IsParse reports whether err is an oracle parse failure.
func IsParse(err error) bool { return KindOf(err) == KindParse }

// IsRetriable reports whether a failed analysis may be re-invoked later.
func IsRetriable(err error) bool {
	switch KindOf(err) {
	case KindUpstream, KindParse:
		return true
	}
	return false
}
