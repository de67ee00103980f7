// Package inputval validates decoded form structs with go-playground/validator
// and turns failures into messages suitable for a form error banner.
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		// Use the form tag for field names in messages.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := strings.Split(f.Tag.Get("form"), ",")[0]; name != "" && name != "-" {
				return name
			}
			return strings.ToLower(f.Name)
		})
	})
	return v
}

// Struct validates s and returns nil or an error whose message lists every
// failing field in declaration order.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fieldError(fe))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return err
}

// IsValidEmail reports whether s parses as a single address.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && instance().Var(s, "email") == nil
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
