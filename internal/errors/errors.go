// Package errors defines the domain error taxonomy shared by services and
// the HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError is a caller-facing failure with a stable code and an HTTP
// status class.
type DomainError struct {
	Code    string
	Message string
	Status  int
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches on Code so that wrapped copies created by Withf still compare
// equal to their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Withf returns a copy of e carrying a more specific message.
func (e *DomainError) Withf(format string, args ...interface{}) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
		Status:  e.Status,
	}
}

// PinInvalidError reports a wrong PIN together with the attempts left before
// the lockout starts.
type PinInvalidError struct {
	Remaining int
}

func (e *PinInvalidError) Error() string {
	return fmt.Sprintf("invalid PIN, %d attempts remaining", e.Remaining)
}

// Is lets errors.Is(err, ErrPinInvalid) match any remaining count.
func (e *PinInvalidError) Is(target error) bool {
	return target == ErrPinInvalid
}

// StatusOf returns the HTTP status for err; unknown errors are 500.
func StatusOf(err error) int {
	var pinErr *PinInvalidError
	if errors.As(err, &pinErr) {
		return ErrPinInvalid.Status
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the stable code of a domain error, or "INTERNAL".
func CodeOf(err error) string {
	var pinErr *PinInvalidError
	if errors.As(err, &pinErr) {
		return ErrPinInvalid.Code
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "INTERNAL"
}

// IsDomain reports whether err carries a caller-facing domain error.
func IsDomain(err error) bool {
	var pinErr *PinInvalidError
	var de *DomainError
	return errors.As(err, &pinErr) || errors.As(err, &de)
}
