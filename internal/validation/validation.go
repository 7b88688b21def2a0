// Package validation wraps go-playground/validator with the storefront's
// custom rules and turns failures into apperror validation errors.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/freshcart/storefront/internal/apperror"
)

var (
	mobileRE  = regexp.MustCompile(`^[6-9]\d{9}$`)
	specialRE = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>+\-_]`)
)

// Validator validates request structs.
type Validator struct {
	v *validator.Validate
}

// New builds a validator with the "mobile" and "password" rules registered and
// json tag names used in error fields.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobileRE.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return &Validator{v: v}
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// StrongPassword reports whether pw has at least 8 characters including a
// letter, a digit and a special character, and fits in MaxPasswordBytes.
func StrongPassword(pw string) bool {
	if len([]rune(pw)) < 8 || len(pw) > MaxPasswordBytes {
		return false
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit && specialRE.MatchString(pw)
}

// Struct validates s. On failure it returns an *apperror.Error of kind
// validation carrying msg and one entry per offending field.
func (v *Validator) Struct(s any, msg string) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Validation(msg)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return apperror.ValidationFields(msg, fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "gte":
		return "must be at least " + fe.Param()
	case "mobile":
		return "must be a valid 10-digit mobile number"
	case "password":
		return "must be 8 to 72 bytes long and include a letter, a number and a special character"
	default:
		return "is invalid"
	}
}
