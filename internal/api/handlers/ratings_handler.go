package handlers

import (
	"net/http"

	"github.com/brandlink/engine/internal/api/types"
	"github.com/brandlink/engine/internal/identity"
	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/repository"
	appErr "github.com/brandlink/engine/pkg/errors"
)

type RatingsHandler struct {
	ratings repository.RatingRepository
}

func NewRatingsHandler(ratings repository.RatingRepository) *RatingsHandler {
	return &RatingsHandler{ratings: ratings}
}

// Create records a rating given by the caller.
func (h *RatingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in repository.CreateRatingInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.RaterID = identity.Actor(r.Context())
	id, err := h.ratings.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, types.IDResponse{ID: id})
}

// List requires either ?ratee_id= or ?campaign_id=.
func (h *RatingsHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []models.Rating
		err   error
	)
	q := r.URL.Query()
	switch {
	case q.Get("ratee_id") != "":
		items, err = h.ratings.ListByRatee(r.Context(), q.Get("ratee_id"))
	case q.Get("campaign_id") != "":
		items, err = h.ratings.ListByCampaign(r.Context(), q.Get("campaign_id"))
	default:
		err = appErr.Invalid("ratee_id or campaign_id is required")
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, items)
}
