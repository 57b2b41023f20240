// Package validators wraps go-playground/validator with the project's custom
// rules and converts failures into invalid AppErrors.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	appErr "github.com/brandlink/engine/pkg/errors"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// New returns the shared, fully configured validator.
func New() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		// Money fields validate as numbers, e.g. `validate:"gte=0"`.
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		instance = v
	})
	return instance
}

// Check validates s and returns an invalid AppError listing failing fields.
func Check(s any) error {
	return convert(New().Struct(s))
}

// Var validates a single value against tag, reporting it under name.
func Var(name string, value any, tag string) error {
	err := New().Var(value, tag)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return appErr.Invalid("%s failed %q validation", name, ve[0].Tag()).
			WithMeta("fields", []string{name})
	}
	return appErr.Wrap(err, appErr.CodeInvalid, name+" is invalid")
}

func convert(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return appErr.Wrap(err, appErr.CodeInvalid, "invalid input")
	}
	fields := make([]string, 0, len(ve))
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fe.Field())
		parts = append(parts, describe(fe))
	}
	return appErr.Invalid("%s", strings.Join(parts, "; ")).WithMeta("fields", fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}
