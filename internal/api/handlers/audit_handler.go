package handlers

import (
	"net/http"

	"github.com/brandlink/engine/internal/audit"
	"github.com/brandlink/engine/internal/models"
	appErr "github.com/brandlink/engine/pkg/errors"
)

type AuditHandler struct {
	recorder *audit.Recorder
}

func NewAuditHandler(recorder *audit.Recorder) *AuditHandler {
	return &AuditHandler{recorder: recorder}
}

// List requires ?entity= with ?entity_id=, or ?user_id=.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []models.AuditLog
		err   error
	)
	q := r.URL.Query()
	switch {
	case q.Get("entity") != "" && q.Get("entity_id") != "":
		items, err = h.recorder.ForEntity(r.Context(), q.Get("entity"), q.Get("entity_id"))
	case q.Get("user_id") != "":
		items, err = h.recorder.ForUser(r.Context(), q.Get("user_id"))
	default:
		err = appErr.Invalid("entity and entity_id, or user_id, are required")
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, items)
}
