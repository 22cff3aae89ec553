// Package errs defines the HTTP error shape returned to API clients.
package errs

import (
	"net/http"
	"strings"
)

// FieldError is a field-level validation failure.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is an error that already knows its HTTP status and client-facing code.
type HTTPError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"-"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// New builds an HTTPError whose code is derived from the status text when code is empty.
func New(status int, code, message string) *HTTPError {
	if code == "" {
		code = codeFromStatus(status)
	}
	return &HTTPError{Code: code, Message: message, Status: status}
}

func BadRequest(code, message string) *HTTPError {
	return New(http.StatusBadRequest, code, message)
}

func Unauthorized(message string) *HTTPError {
	return New(http.StatusUnauthorized, "", message)
}

func Forbidden(message string) *HTTPError {
	return New(http.StatusForbidden, "", message)
}

func NotFound(message string) *HTTPError {
	return New(http.StatusNotFound, "", message)
}

func Conflict(code, message string) *HTTPError {
	return New(http.StatusConflict, code, message)
}

// Internal never carries the underlying error message.
func Internal() *HTTPError {
	return New(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// Validation wraps field errors into a 400.
func Validation(fields []FieldError) *HTTPError {
	e := New(http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed")
	e.Fields = fields
	return e
}

// "Bad Request" -> "BAD_REQUEST"
func codeFromStatus(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
