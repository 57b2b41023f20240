package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brandlink/engine/internal/api/types"
	"github.com/brandlink/engine/internal/repository"
)

type AttachmentsHandler struct {
	attachments repository.AttachmentRepository
}

func NewAttachmentsHandler(attachments repository.AttachmentRepository) *AttachmentsHandler {
	return &AttachmentsHandler{attachments: attachments}
}

func (h *AttachmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in repository.CreateAttachmentInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.attachments.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, types.IDResponse{ID: id})
}

func (h *AttachmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.attachments.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, a)
}

func (h *AttachmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch repository.AttachmentPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.attachments.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, a)
}

func (h *AttachmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.attachments.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AttachmentsHandler) ListUnattached(w http.ResponseWriter, r *http.Request) {
	items, err := h.attachments.ListUnattached(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, items)
}
