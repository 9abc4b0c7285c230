package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesWrappedCopies(t *testing.T) {
	err := fmt.Errorf("transfer: %w", ErrValidation.Withf("amount: must be greater than 0"))

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrInsufficientFunds))
	assert.Equal(t, "transfer: amount: must be greater than 0", err.Error())
	assert.Equal(t, "invalid input", ErrValidation.Message)
}

func TestPinInvalidError(t *testing.T) {
	err := fmt.Errorf("verify: %w", &PinInvalidError{Remaining: 2})

	assert.True(t, errors.Is(err, ErrPinInvalid))
	var pinErr *PinInvalidError
	assert.True(t, errors.As(err, &pinErr))
	assert.Equal(t, 2, pinErr.Remaining)
}

func TestStatusAndCode(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
		domain bool
	}{
		{ErrInsufficientFunds, http.StatusBadRequest, "INSUFFICIENT_FUNDS", true},
		{ErrRecipientNotFound, http.StatusNotFound, "RECIPIENT_NOT_FOUND", true},
		{ErrPinLocked, http.StatusForbidden, "PIN_LOCKED", true},
		{&PinInvalidError{Remaining: 0}, http.StatusBadRequest, "PIN_INVALID", true},
		{ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN", true},
		{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusOf(tt.err))
			assert.Equal(t, tt.code, CodeOf(tt.err))
			assert.Equal(t, tt.domain, IsDomain(tt.err))
		})
	}
}
