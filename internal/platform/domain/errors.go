package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used across the service. Routing and pricing faults carry the
// taxonomy used by the booking wizard: validation faults never reach the
// network, provider/timeout faults are recoverable by retrying, pricing
// faults surface the remote service's message when it sent one.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeProvider     = "PROVIDER_ERROR"
	CodeTimeout      = "PROVIDER_TIMEOUT"
	CodePricing      = "PRICING_ERROR"
)

// AppError is a typed application error that maps onto an HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	cause      error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *AppError) Unwrap() error { return e.cause }

// WithCause attaches an underlying error and returns the AppError.
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// NewValidationError creates a 400-level validation error.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest}
}

// NewNotFoundError creates a 404 error for a missing entity.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s %s not found", entity, id),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewConflictError creates a 409 error for concurrent-modification conflicts.
func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, HTTPStatus: http.StatusConflict}
}

// NewForbiddenError creates a 403 error.
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, HTTPStatus: http.StatusForbidden}
}

// NewUnauthorizedError creates a 401 error.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, HTTPStatus: http.StatusUnauthorized}
}

// NewProviderError creates a 502 error for a failed geocoding or directions call.
func NewProviderError(message string) *AppError {
	return &AppError{Code: CodeProvider, Message: message, HTTPStatus: http.StatusBadGateway}
}

// NewTimeoutError creates a timeout variant of the provider error. It is
// recoverable: the caller may simply retry the resolution.
func NewTimeoutError(message string) *AppError {
	return &AppError{Code: CodeTimeout, Message: message, HTTPStatus: http.StatusGatewayTimeout}
}

// NewPricingError creates a 502 error for a non-2xx or malformed pricing response.
func NewPricingError(message string) *AppError {
	return &AppError{Code: CodePricing, Message: message, HTTPStatus: http.StatusBadGateway}
}

// AsAppError extracts an *AppError from an error chain, if present.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// PaginatedResult wraps a page of items with pagination metadata.
type PaginatedResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// NewPaginatedResult creates a PaginatedResult from a page of items.
func NewPaginatedResult[T any](items []T, total int64, page, limit int) PaginatedResult[T] {
	return PaginatedResult[T]{Items: items, Total: total, Page: page, Limit: limit}
}
