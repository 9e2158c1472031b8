package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures independently of transport.
type ErrorKind string

const (
	KindInvalidArgument ErrorKind = "InvalidArgument"
	KindUnauthenticated ErrorKind = "Unauthenticated"
	KindForbidden       ErrorKind = "Forbidden"
	KindNotFound        ErrorKind = "NotFound"
	KindConflict        ErrorKind = "Conflict"
	KindRateLimited     ErrorKind = "RateLimited"
	KindUpstreamEmpty   ErrorKind = "UpstreamEmpty"
	KindUpstreamError   ErrorKind = "UpstreamError"
	KindStoreError      ErrorKind = "StoreError"
	KindInternal        ErrorKind = "Internal"
)

// AppError represents a custom application error with context
type AppError struct {
	Code      int                    // HTTP status code
	Kind      ErrorKind              // Failure class
	Message   string                 // User-friendly message
	MessageID string                 // Optional i18n message id for Message
	Err       error                  // Underlying error
	Context   map[string]interface{} // Additional context
}

// NewAppError creates a new AppError
func NewAppError(code int, kind ErrorKind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

// Localized attaches an i18n message id used when rendering the error.
func (e *AppError) Localized(messageID string) *AppError {
	e.MessageID = messageID
	return e
}

// AsAppError extracts an *AppError from err, if any.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == kind
}

// Common error constructors
func BadRequestError(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, KindInvalidArgument, message, err)
}

func UnauthorizedError(message string, err error) *AppError {
	return NewAppError(http.StatusUnauthorized, KindUnauthenticated, message, err)
}

func ForbiddenError(message string, err error) *AppError {
	return NewAppError(http.StatusForbidden, KindForbidden, message, err)
}

func NotFoundError(message string, err error) *AppError {
	return NewAppError(http.StatusNotFound, KindNotFound, message, err)
}

func ConflictError(message string, err error) *AppError {
	return NewAppError(http.StatusConflict, KindConflict, message, err)
}

func RateLimitedError(message string, err error) *AppError {
	return NewAppError(http.StatusTooManyRequests, KindRateLimited, message, err)
}

// UpstreamEmptyError reports a completion call that produced no text.
func UpstreamEmptyError(message string) *AppError {
	return NewAppError(http.StatusBadGateway, KindUpstreamEmpty, message, nil)
}

// UpstreamError reports a failed completion call. Upstream rate limiting is surfaced as 429,
// everything else as 502.
func UpstreamError(message string, upstreamStatus int, err error) *AppError {
	code := http.StatusBadGateway
	if upstreamStatus == http.StatusTooManyRequests {
		code = http.StatusTooManyRequests
	}
	return NewAppError(code, KindUpstreamError, message, err).WithContext("upstream_status", upstreamStatus)
}

// StoreError reports a rejected persistence call; the store's message is passed through.
func StoreError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, KindStoreError, err.Error(), err)
}

func InternalServerError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, KindInternal, message, err)
}
