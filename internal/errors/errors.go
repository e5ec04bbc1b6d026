package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Field + ": " + e.Message
}

// Kind classifies failures at the API boundary.
type Kind string

const (
	KindInvalidInput          Kind = "InvalidInput"
	KindUpstreamUnavailable   Kind = "UpstreamUnavailable"
	KindMalformedUpstreamData Kind = "MalformedUpstreamData"
	KindConfigurationMissing  Kind = "ConfigurationMissing"
	KindCompletionFailed      Kind = "CompletionFailed"
	KindInternal              Kind = "Internal"
)

// Error is a kinded error. Message is what the caller sees; Err keeps the cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func InvalidInput(format string, args ...any) *Error {
	return newError(KindInvalidInput, nil, format, args...)
}

func UpstreamUnavailable(err error, format string, args ...any) *Error {
	return newError(KindUpstreamUnavailable, err, format, args...)
}

func MalformedUpstreamData(format string, args ...any) *Error {
	return newError(KindMalformedUpstreamData, nil, format, args...)
}

func ConfigurationMissing(format string, args ...any) *Error {
	return newError(KindConfigurationMissing, nil, format, args...)
}

// CompletionFailed keeps the upstream error text as the message.
func CompletionFailed(err error) *Error {
	return &Error{Kind: KindCompletionFailed, Err: err}
}

// KindOf reports the kind of err. Validation errors count as invalid input.
func KindOf(err error) Kind {
	var ke *Error
	if stderrors.As(err, &ke) {
		return ke.Kind
	}
	var ve *ErrValidation
	if stderrors.As(err, &ve) {
		return KindInvalidInput
	}
	return KindInternal
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindConfigurationMissing:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
