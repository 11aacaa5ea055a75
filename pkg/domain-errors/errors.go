// Package domainerrors provides coded errors that services return and the HTTP
// layer translates into status codes and JSON envelopes. Stores should return
// pkg/platform/sentinel errors instead; services wrap those facts into one of
// the codes below.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies an error for transport mapping and client handling.
type Code string

const (
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeExpired      Code = "expired"
	CodeUnavailable  Code = "unavailable"
	CodeInternal     Code = "internal_error"
)

// Error carries a stable code plus a human-readable description. The
// description is safe to return to clients except for internal errors, where
// the HTTP layer omits it.
type Error struct {
	Code        Code
	Description string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Description
}

// New builds a coded domain error.
func New(code Code, description string) *Error {
	return &Error{Code: code, Description: description}
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var domainErr *Error
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// ToHTTPStatus maps an error code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeExpired:
		return http.StatusGone
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
