package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brandlink/engine/internal/api/types"
	"github.com/brandlink/engine/internal/identity"
	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/repository"
)

type CampaignsHandler struct {
	campaigns repository.CampaignRepository
}

func NewCampaignsHandler(campaigns repository.CampaignRepository) *CampaignsHandler {
	return &CampaignsHandler{campaigns: campaigns}
}

// Create defaults the owner to the caller.
func (h *CampaignsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in repository.CreateCampaignInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.OwnerUserID == "" {
		in.OwnerUserID = identity.Actor(r.Context())
	}
	id, err := h.campaigns.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, types.IDResponse{ID: id})
}

func (h *CampaignsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *CampaignsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch repository.CampaignPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.campaigns.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *CampaignsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List filters by ?platform= when given, otherwise by ?owner_id= (the caller
// by default) and an optional ?status=.
func (h *CampaignsHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []models.Campaign
		err   error
	)
	if p := optional[models.Platform](r, "platform"); p != nil {
		items, err = h.campaigns.ListByPlatform(r.Context(), *p)
	} else {
		owner := r.URL.Query().Get("owner_id")
		if owner == "" {
			owner = identity.Actor(r.Context())
		}
		items, err = h.campaigns.ListByOwner(r.Context(), owner, optional[models.CampaignStatus](r, "status"))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, items)
}

func (h *CampaignsHandler) Platforms(w http.ResponseWriter, r *http.Request) {
	ps, err := h.campaigns.Platforms(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, ps)
}

func (h *CampaignsHandler) AddPlatform(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Platform models.Platform `json:"platform"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.campaigns.AddPlatform(r.Context(), chi.URLParam(r, "id"), req.Platform); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CampaignsHandler) RemovePlatform(w http.ResponseWriter, r *http.Request) {
	platform := models.Platform(chi.URLParam(r, "platform"))
	if err := h.campaigns.RemovePlatform(r.Context(), chi.URLParam(r, "id"), platform); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CampaignsHandler) ReplacePlatforms(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Platforms []models.Platform `json:"platforms"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.campaigns.ReplacePlatforms(r.Context(), chi.URLParam(r, "id"), req.Platforms); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
