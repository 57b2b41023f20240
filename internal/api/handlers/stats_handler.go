package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brandlink/engine/internal/services"
)

type StatsHandler struct {
	aggregates services.AggregationService
}

func NewStatsHandler(aggregates services.AggregationService) *StatsHandler {
	return &StatsHandler{aggregates: aggregates}
}

func (h *StatsHandler) BrandSpent(w http.ResponseWriter, r *http.Request) {
	total, err := h.aggregates.BrandTotalsSpent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"total_spent": total})
}

func (h *StatsHandler) BrandDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.aggregates.BrandDashboard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, d)
}

func (h *StatsHandler) InfluencerCounters(w http.ResponseWriter, r *http.Request) {
	c, err := h.aggregates.InfluencerCounters(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *StatsHandler) RatingAverage(w http.ResponseWriter, r *http.Request) {
	avg, err := h.aggregates.RatingAverage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]float64{"rating_average": avg})
}
