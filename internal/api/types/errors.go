package types

import (
	"errors"
	"net/http"

	appErr "github.com/brandlink/engine/pkg/errors"
)

// FromAppError converts err into the wire error. Messages of non-AppErrors are
// hidden since they may carry backend details.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var e *appErr.AppError
	if !errors.As(err, &e) {
		return &APIError{Code: string(appErr.CodeInternal), Message: "internal error"}
	}
	out := &APIError{Code: string(e.Code), Message: e.Message}
	if fields, ok := e.Meta["fields"].([]string); ok {
		out.Fields = fields
	}
	return out
}

// StatusOf maps an error code to its HTTP status.
func StatusOf(err error) int {
	switch appErr.CodeOf(err) {
	case appErr.CodeInvalid:
		return http.StatusBadRequest
	case appErr.CodeNotFound:
		return http.StatusNotFound
	case appErr.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
