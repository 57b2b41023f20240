package handlers

import (
	"net/http"

	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/storage"
)

type HealthHandler struct {
	store *storage.Engine
}

func NewHealthHandler(store *storage.Engine) *HealthHandler { return &HealthHandler{store: store} }

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness reports ready while the store accepts reads.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeData(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	if err := h.store.View(r.Context(), func(*models.Document) error { return nil }); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ready", "backend": h.store.BackendName()})
}
