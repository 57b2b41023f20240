package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brandlink/engine/internal/api/types"
	"github.com/brandlink/engine/internal/identity"
	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/repository"
)

type CollaboratorsHandler struct {
	collaborators repository.CollaboratorRepository
}

func NewCollaboratorsHandler(collaborators repository.CollaboratorRepository) *CollaboratorsHandler {
	return &CollaboratorsHandler{collaborators: collaborators}
}

func (h *CollaboratorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in repository.CreateCollaboratorInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.collaborators.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, types.IDResponse{ID: id})
}

func (h *CollaboratorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.collaborators.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *CollaboratorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch repository.CollaboratorPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.collaborators.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *CollaboratorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.collaborators.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List filters by ?campaign_id= when given, otherwise returns the
// collaborators across the campaigns of ?owner_id= (the caller by default).
func (h *CollaboratorsHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []models.Collaborator
		err   error
	)
	if campaignID := r.URL.Query().Get("campaign_id"); campaignID != "" {
		items, err = h.collaborators.ListByCampaign(r.Context(), campaignID)
	} else {
		owner := r.URL.Query().Get("owner_id")
		if owner == "" {
			owner = identity.Actor(r.Context())
		}
		items, err = h.collaborators.ListByOwner(r.Context(), owner)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, items)
}
