// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for FlavorFi.

It provides a rich error type that carries a machine-readable code from the
place a failure is detected up to the front end that decides how to show it.

Architecture:

  - AppError: A struct containing machine-readable Code and user-friendly messages.
  - Remote Mapping: HTTP statuses returned by the API are folded into the same codes.
  - Causes: The original error stays reachable through [errors.Is] and [errors.As].

Distinguished outcomes that are not failures (a restaurant conflict in the cart)
are returned as values and never appear here.
*/
package apperr

import (
	"errors"
	"net/http"
)

// # Error Codes

const (
	CodeMalformedToken = "MALFORMED_TOKEN"
	CodeValidation     = "VALIDATION_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeUnavailable    = "UNAVAILABLE"
	CodeInternal       = "INTERNAL_ERROR"
)

// AppError is the canonical error type of the FlavorFi client.
//
// # Security
//
// The Cause field may hold transport or storage details and is meant for logs.
// Message is the only text a front end should display.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to show to the user.
	Message string `json:"error"`
	// HTTPStatus is the status returned by the remote API, zero for local errors.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the display message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Local Errors

// MalformedToken reports an access token whose expiry claim cannot be decoded.
func MalformedToken(cause error) *AppError {
	return &AppError{
		Code:    CodeMalformedToken,
		Message: "Session token is malformed",
		Cause:   cause,
	}
}

// ValidationError creates a VALIDATION_ERROR with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// Unauthorized reports a missing or expired session.
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NotFound creates a NOT_FOUND error for a named resource.
//
// Example:
//
//	apperr.NotFound("Restaurant") // Returns "Restaurant not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unavailable reports that a dependency (store, API) could not be reached.
func Unavailable(msg string, cause error) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// Internal wraps an unexpected error. The cause is kept for logging.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Remote Mapping

// FromStatus folds a non-2xx API response into an [AppError].
// An empty msg falls back to the standard status text.
func FromStatus(status int, msg string) *AppError {
	if msg == "" {
		msg = http.StatusText(status)
	}

	code := CodeInternal
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		code = CodeValidation
	case status == http.StatusUnauthorized:
		code = CodeUnauthorized
	case status == http.StatusForbidden:
		code = CodeForbidden
	case status == http.StatusNotFound:
		code = CodeNotFound
	case status == http.StatusConflict:
		code = CodeConflict
	case status == http.StatusTooManyRequests, status >= 500:
		code = CodeUnavailable
	}

	return &AppError{Code: code, Message: msg, HTTPStatus: status}
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
