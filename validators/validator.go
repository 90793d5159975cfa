package validators

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/hatimchharchhoda/Tweet/internal/apperrors"
)

// Validator wraps go-playground/validator for Echo's Validator interface
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates the request validator with custom rules registered
func NewValidator() *Validator {
	v := validator.New()
	// required passes for whitespace-only strings; notblank does not
	_ = v.RegisterValidation("notblank", notBlank)
	return &Validator{validate: v}
}

// Validate implements echo.Validator. Field errors are rewritten into plain
// sentences instead of the library's struct-path messages.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperrors.Validation(fieldMessage(fieldErrs[0]))
	}
	return apperrors.Validation(err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	field := snakeCase(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "notblank":
		return field + " must not be blank"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// snakeCase maps a Go field name to its wire name ("PostID" -> "post_id")
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 && !unicode.IsUpper(rune(name[i-1])) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
