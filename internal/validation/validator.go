// Package validation checks request payloads with go-playground/validator
// and reports failures as domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	appErrors "kosh/internal/errors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return PasswordProblem(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return IsPin(fl.Field().String())
	})
	return v
}

// Struct validates s and returns an ErrValidation describing the first
// failing field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return appErrors.ErrValidation
	}
	return appErrors.ErrValidation.Withf("%s", message(verrs[0]))
}

// Var validates a single value against tag.
func Var(field string, value interface{}, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return appErrors.ErrValidation
	}
	return appErrors.ErrValidation.Withf("%s: %s", field, describe(verrs[0]))
}

func message(fe validator.FieldError) string {
	return fmt.Sprintf("%s: %s", fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "pin":
		return fmt.Sprintf("must be %d to %d digits", MinPinLength, MaxPinLength)
	case "password":
		return PasswordProblem(fmt.Sprint(fe.Value()))
	default:
		return "is invalid"
	}
}

// IsPin reports whether s is 4 to 6 ASCII digits.
func IsPin(s string) bool {
	if len(s) < MinPinLength || len(s) > MaxPinLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// PasswordProblem returns why password is too weak, or "" when it is
// acceptable.
func PasswordProblem(password string) string {
	if len(password) < MinPasswordLength {
		return fmt.Sprintf("must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Sprintf("must not be more than %d characters long", MaxPasswordLength)
	}
	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return "must not be entirely numeric"
	}
	return ""
}
