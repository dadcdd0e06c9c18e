package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"StockLens/internal/model"
)

// AppError represents application-level error with HTTP status.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Field: field, Status: status}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// NotFoundErrorf creates a 404 error.
func NotFoundErrorf(format string, a ...interface{}) *AppError {
	return NewAppError("ERR_NOT_FOUND", "", fmt.Sprintf(format, a...), http.StatusNotFound)
}

// BadRequestErrorf creates a 400 error.
func BadRequestErrorf(field, format string, a ...interface{}) *AppError {
	return NewAppError("ERR_BAD_REQUEST", field, fmt.Sprintf(format, a...), http.StatusBadRequest)
}

// FromError classifies a domain error: acquisition failures are upstream problems (502),
// format failures are the caller's (400) and invariant violations are ours (500).
func FromError(err error) *AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewAppError("ERR_TIMEOUT", "", err.Error(), http.StatusGatewayTimeout).WithError(err)
	}
	kind := model.KindOf(err)
	switch kind {
	case model.KindAcquisition:
		return NewAppError("ERR_ACQUISITION", "", err.Error(), http.StatusBadGateway).
			WithParam("kind", kind.String()).WithError(err)
	case model.KindFormat:
		return NewAppError("ERR_FORMAT", "", err.Error(), http.StatusBadRequest).
			WithParam("kind", kind.String()).WithError(err)
	case model.KindInvariant:
		return NewAppError("ERR_INVARIANT", "", err.Error(), http.StatusInternalServerError).
			WithParam("kind", kind.String()).WithError(err)
	}
	return NewAppError("ERR_INTERNAL", "", "Something went wrong", http.StatusInternalServerError).WithError(err)
}
