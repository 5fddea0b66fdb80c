// Package apperror defines the typed domain errors raised by services.
// Handlers translate them to HTTP responses through HTTPStatus; callers
// inside the core branch on Code, never on message text.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeNotFound             Code = "NOT_FOUND"
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeLimitReached         Code = "LIMIT_REACHED"
	CodeConcurrentExhaustion Code = "CONCURRENT_EXHAUSTION"
	CodeConflict             Code = "CONFLICT"
	CodePersistence          Code = "PERSISTENCE_ERROR"
)

var statusByCode = map[Code]int{
	CodeNotFound:             http.StatusNotFound,
	CodeValidation:           http.StatusUnprocessableEntity,
	CodeLimitReached:         http.StatusConflict,
	CodeConcurrentExhaustion: http.StatusConflict,
	CodeConflict:             http.StatusConflict,
	CodePersistence:          http.StatusInternalServerError,
}

// Error carries a Code, a caller-safe message and an optional cause.
type Error struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap keeps err reachable through errors.Is / errors.As.
func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodePersistence
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the first *Error in err's chain, or nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf reports the code of err; untyped errors count as persistence failures.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.code
	}
	return CodePersistence
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

func HTTPStatus(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func NotFound(message string) *Error { return New(CodeNotFound, message) }

func Validation(message string) *Error { return New(CodeValidation, message) }

func Persistence(err error, message string) *Error {
	return Wrap(CodePersistence, err, message)
}
