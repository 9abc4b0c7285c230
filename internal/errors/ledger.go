package errors

import "net/http"

var (
	ErrValidation = &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "invalid input",
		Status:  http.StatusBadRequest,
	}
	ErrRecipientNotFound = &DomainError{
		Code:    "RECIPIENT_NOT_FOUND",
		Message: "Recipient not found",
		Status:  http.StatusNotFound,
	}
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
		Status:  http.StatusNotFound,
	}
	ErrSelfTransfer = &DomainError{
		Code:    "SELF_TRANSFER_NOT_ALLOWED",
		Message: "Cannot transfer money to your own wallet",
		Status:  http.StatusBadRequest,
	}
	ErrSelfRequest = &DomainError{
		Code:    "SELF_REQUEST_NOT_ALLOWED",
		Message: "Cannot request money from yourself",
		Status:  http.StatusBadRequest,
	}
	ErrInsufficientFunds = &DomainError{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "Insufficient balance",
		Status:  http.StatusBadRequest,
	}
	ErrInvalidRequestState = &DomainError{
		Code:    "INVALID_REQUEST",
		Message: "Invalid request",
		Status:  http.StatusNotFound,
	}
)
