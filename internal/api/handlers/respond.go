package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/brandlink/engine/internal/api/middleware"
	"github.com/brandlink/engine/internal/api/types"
	"github.com/brandlink/engine/internal/identity"
	appErr "github.com/brandlink/engine/pkg/errors"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.APIResponse{Success: true, Data: data})
}

// writeError maps err to a status. Server-side failures are logged and sent
// to Sentry.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := types.StatusOf(err)
	if status >= http.StatusInternalServerError {
		middleware.RequestLogger(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
	}
	writeJSON(w, status, types.APIResponse{
		Success: false,
		Error:   types.FromAppError(err),
		Meta:    &types.Meta{RequestID: identity.RequestID(r.Context())},
	})
}

// decode reads a JSON body into dst.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return appErr.Invalid("request body is empty")
		}
		return appErr.Invalid("invalid json: %v", err)
	}
	return nil
}

// paginate slices items by the page and page_size query parameters.
func paginate[T any](r *http.Request, items []T) ([]T, *types.Meta) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	// Pages past the end are empty. Checked before multiplying so huge page
	// numbers cannot overflow.
	start := len(items)
	if page-1 <= len(items)/size {
		start = min((page-1)*size, len(items))
	}
	end := min(start+size, len(items))
	return items[start:end], &types.Meta{Page: page, PageSize: size, Total: int64(len(items))}
}

func writeList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	data, meta := paginate(r, items)
	meta.RequestID = identity.RequestID(r.Context())
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: data, Meta: meta})
}

func optional[T ~string](r *http.Request, key string) *T {
	if v := r.URL.Query().Get(key); v != "" {
		out := T(v)
		return &out
	}
	return nil
}
