package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error is the typed error every handler renders. Code is stable for
// clients, Status picks the HTTP response code.
type Error struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Details []FieldError `json:"details,omitempty"`
	Err     error        `json:"-"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error with the same code, so clones of a sentinel still
// satisfy errors.Is against it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates an Error.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches a code, status and message to err.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Validation wraps a binding or validator failure as a 400. Field level
// failures reported by validator/v10 are copied into Details.
func Validation(err error, message string) *Error {
	out := Wrap(err, ErrValidation.Code, ErrValidation.Status, message)
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		out.Details = make([]FieldError, 0, len(fields))
		for _, f := range fields {
			out.Details = append(out.Details, FieldError{
				Field: fieldPath(f.Namespace()),
				Rule:  f.Tag(),
				Param: f.Param(),
			})
		}
	}
	return out
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

var (
	ErrInvalidCredentials   = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid username or password")
	ErrNotStaff             = New("NOT_STAFF", http.StatusForbidden, "account is not authorized as staff")
	ErrInactiveAccount      = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound             = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden            = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized         = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict             = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation           = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrTooManyRequests      = New("TOO_MANY_REQUESTS", http.StatusTooManyRequests, "too many requests")
	ErrDirectoryUnavailable = New("DIRECTORY_UNAVAILABLE", http.StatusServiceUnavailable, "directory service unavailable")
	ErrInternal             = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss            = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError returns err as an *Error, mapping anything untyped to ErrInternal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone copies err, replacing the message when one is given.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
