package errors

import (
    stderrors "errors"
    "net/http"
)

type ErrorType string

const (
    ErrorTypeNotFound      ErrorType = "NOT_FOUND"
    ErrorTypeValidation    ErrorType = "VALIDATION"
    ErrorTypeConflict      ErrorType = "CONFLICT"
    ErrorTypeInternal      ErrorType = "INTERNAL"
    ErrorTypeNotRepository ErrorType = "NOT_REPOSITORY"
)

type Error struct {
    Type    ErrorType `json:"type"`
    Message string    `json:"message"`
    Code    int      `json:"code"`
    Details any      `json:"details,omitempty"`
}

func (e *Error) Error() string {
    return e.Message
}

func NotFound(message string) *Error {
    return &Error{
        Type:    ErrorTypeNotFound,
        Message: message,
        Code:    http.StatusNotFound,
    }
}

func ValidationError(message string, details any) *Error {
    return &Error{
        Type:    ErrorTypeValidation,
        Message: message,
        Code:    http.StatusBadRequest,
        Details: details,
    }
}

func Conflict(message string) *Error {
    return &Error{
        Type:    ErrorTypeConflict,
        Message: message,
        Code:    http.StatusConflict,
    }
}

func Internal(message string) *Error {
    return &Error{
        Type:    ErrorTypeInternal,
        Message: message,
        Code:    http.StatusInternalServerError,
    }
}

func NotRepository(message string) *Error {
    return &Error{
        Type:    ErrorTypeNotRepository,
        Message: message,
        Code:    http.StatusNotFound,
    }
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
    var e *Error
    if stderrors.As(err, &e) {
        return e, true
    }
    return nil, false
}

// IsType reports whether err wraps an *Error of the given type.
func IsType(err error, t ErrorType) bool {
    e, ok := As(err)
    return ok && e.Type == t
}
