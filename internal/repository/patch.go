package repository

import (
	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/validators"
	appErr "github.com/brandlink/engine/pkg/errors"
)

// checkOpt validates one patch field. Absent fields always pass; explicit
// null passes only when the field is nullable.
func checkOpt[T any](field string, o models.Opt[T], nullable bool, tag string) error {
	if !o.Set {
		return nil
	}
	if o.Null {
		if nullable {
			return nil
		}
		return appErr.Invalid("%s cannot be null", field).WithMeta("fields", []string{field})
	}
	if tag == "" {
		return nil
	}
	return validators.Var(field, o.Val, tag)
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
