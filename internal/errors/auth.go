package errors

import "net/http"

var (
	ErrPinNotSet = &DomainError{
		Code:    "PIN_NOT_SET",
		Message: "Transaction PIN not set",
		Status:  http.StatusBadRequest,
	}
	ErrPinLocked = &DomainError{
		Code:    "PIN_LOCKED",
		Message: "Transaction PIN locked. Try again after 10 minutes.",
		Status:  http.StatusForbidden,
	}
	// ErrPinInvalid is the sentinel behind *PinInvalidError.
	ErrPinInvalid = &DomainError{
		Code:    "PIN_INVALID",
		Message: "Invalid PIN",
		Status:  http.StatusBadRequest,
	}
	ErrUnauthorized = &DomainError{
		Code:    "UNAUTHORIZED",
		Message: "Invalid email or password",
		Status:  http.StatusUnauthorized,
	}
	ErrEmailTaken = &DomainError{
		Code:    "EMAIL_TAKEN",
		Message: "user with this email already exists",
		Status:  http.StatusConflict,
	}
)
