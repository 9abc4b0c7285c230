package validation

import (
	"testing"

	appErrors "kosh/internal/errors"

	"github.com/stretchr/testify/assert"
)

type transferInput struct {
	To     string `json:"to" validate:"required"`
	Amount int64  `json:"amount" validate:"gt=0"`
	Pin    string `json:"pin" validate:"required,pin"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(transferInput{To: "b@example.com", Amount: 1, Pin: "1234"}))

	err := Struct(transferInput{To: "b@example.com", Amount: 0, Pin: "1234"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "amount: must be greater than 0", err.Error())

	err = Struct(transferInput{Amount: 10, Pin: "1234"})
	assert.Equal(t, "to: this field is required", err.Error())

	err = Struct(transferInput{To: "x", Amount: 10, Pin: "12a4"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestIsPin(t *testing.T) {
	assert.True(t, IsPin("1234"))
	assert.True(t, IsPin("123456"))
	assert.False(t, IsPin("123"))
	assert.False(t, IsPin("1234567"))
	assert.False(t, IsPin("12b4"))
}

func TestPasswordProblem(t *testing.T) {
	assert.Empty(t, PasswordProblem("correct horse"))
	assert.NotEmpty(t, PasswordProblem("short"))
	assert.NotEmpty(t, PasswordProblem("1234567890"))
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("email", "a@example.com", "required,email"))
	err := Var("email", "nope", "required,email")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "email: must be a valid email address", err.Error())
}
