// Package apperr defines the error taxonomy shared by the helpdesk services
// and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation        Kind = "VALIDATION_FAILURE"
	KindAuthentication    Kind = "AUTHENTICATION_FAILURE"
	KindForbidden         Kind = "FORBIDDEN"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindMutation          Kind = "MUTATION_FAILURE"
	KindProfileResolution Kind = "PROFILE_RESOLUTION_FAILURE"
	KindInternal          Kind = "INTERNAL_ERROR"
)

type meta struct {
	status        int
	publicMessage string
	showMessage   bool
}

var metaByKind = map[Kind]meta{
	KindValidation:        {http.StatusBadRequest, "validation failed", true},
	KindAuthentication:    {http.StatusUnauthorized, "authentication required", true},
	KindForbidden:         {http.StatusForbidden, "forbidden", true},
	KindNotFound:          {http.StatusNotFound, "not found", true},
	KindConflict:          {http.StatusConflict, "conflict", true},
	KindMutation:          {http.StatusBadGateway, "storage rejected the change", false},
	KindProfileResolution: {http.StatusServiceUnavailable, "profile unavailable", false},
	KindInternal:          {http.StatusInternalServerError, "internal error", false},
}

// Error is a typed application error. Details is exposed to API callers only
// for kinds that show their message.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// WithDetail adds a field-level detail and returns e.
func (e *Error) WithDetail(field, msg string) *Error {
	if e.Details == nil {
		e.Details = map[string]string{}
	}
	e.Details[field] = msg
	return e
}

// Is matches another *Error by kind so callers can write
// errors.Is(err, apperr.New(apperr.KindForbidden, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// As extracts the first *Error in the chain, or nil.
func As(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// KindOf returns the kind of err, KindInternal for untyped errors.
func KindOf(err error) Kind {
	if typed := As(err); typed != nil {
		return typed.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(kind Kind) int {
	if m, ok := metaByKind[kind]; ok {
		return m.status
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text safe to show API callers.
func PublicMessage(err error) string {
	typed := As(err)
	if typed == nil {
		return metaByKind[KindInternal].publicMessage
	}
	m, ok := metaByKind[typed.Kind]
	if !ok {
		return metaByKind[KindInternal].publicMessage
	}
	if m.showMessage && typed.Message != "" {
		return typed.Message
	}
	return m.publicMessage
}

func Validation(message string) *Error { return New(KindValidation, message) }

func Forbidden(message string) *Error { return New(KindForbidden, message) }

func NotFound(message string) *Error { return New(KindNotFound, message) }

func Unauthenticated(message string) *Error { return New(KindAuthentication, message) }

func Mutation(err error, message string) *Error { return Wrap(KindMutation, err, message) }
