package chat

import (
	"errors"

	"github.com/geochat-ai/geochat/pkg/gmaps"
	"github.com/geochat-ai/geochat/pkg/safety"
)

// ErrorType is the stable discriminant surfaced to callers so they can
// branch without parsing the human-readable message.
type ErrorType string

const (
	ErrTypeValidation ErrorType = "validation_error"
	ErrTypeRateLimit  ErrorType = "rate_limit"
	ErrTypeProvider   ErrorType = "provider_error"
	ErrTypeNotFound   ErrorType = "not_found"
)

// Error is a caller-facing failure. Message is safe to show to users;
// backend detail is logged, never carried here.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return string(e.Type) + ": " + e.Message
}

// NewValidationError reports a malformed or rejected input.
func NewValidationError(message string) *Error {
	return &Error{Type: ErrTypeValidation, Message: message}
}

// NewRateLimitError reports a denied admission.
func NewRateLimitError() *Error {
	return &Error{Type: ErrTypeRateLimit, Message: "Rate limit exceeded. Please slow down and try again."}
}

// NewProviderError reports a backend failure with a generic message.
func NewProviderError() *Error {
	return &Error{Type: ErrTypeProvider, Message: "I'm having trouble reaching a backend service. Please try again."}
}

// NewNotFoundError reports an empty provider result set.
func NewNotFoundError() *Error {
	return &Error{Type: ErrTypeNotFound, Message: "No results found for that request."}
}

// Classify maps an internal error to its caller-facing form. Unknown
// errors become generic provider failures so backend detail never
// leaks.
func Classify(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	switch {
	case errors.Is(err, safety.ErrEmpty),
		errors.Is(err, safety.ErrTooLong),
		errors.Is(err, safety.ErrUnsafe),
		errors.Is(err, safety.ErrTooNoisy):
		return NewValidationError(err.Error())
	case errors.Is(err, gmaps.ErrNotFound):
		return NewNotFoundError()
	default:
		return NewProviderError()
	}
}
