package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"carcompare-api/internal/matching"
	"carcompare-api/internal/model"
	"carcompare-api/internal/seed"
	"carcompare-api/internal/service"
)

type CarHandler struct {
	svc     *service.CarService
	catalog *seed.Catalog
	logger  *slog.Logger
}

func NewCarHandler(svc *service.CarService, catalog *seed.Catalog, logger *slog.Logger) *CarHandler {
	return &CarHandler{svc: svc, catalog: catalog, logger: logger}
}

// Search fetches, merges and scores specs for a term. Preference fields
// missing from the request keep their defaults.
func (h *CarHandler) Search(w http.ResponseWriter, r *http.Request) {
	defaults := model.DefaultPreferences()
	req := model.SearchRequest{Preferences: &defaults}
	if !decodeJSON(w, r, &req) {
		return
	}

	prefs := model.DefaultPreferences()
	if req.Preferences != nil {
		prefs = *req.Preferences
	}

	resp, err := h.svc.FetchAndScore(r.Context(), req.Term, prefs)
	if errors.Is(err, service.ErrEmptyTerm) {
		writeError(w, http.StatusBadRequest, errInvalidRequest, "term is required")
		return
	}
	if err != nil {
		h.logger.Error("search failed", "term", req.Term, "error", err)
		writeError(w, http.StatusInternalServerError, errSearch, "search failed")
		return
	}

	if resp.Results == nil {
		resp.Results = []model.VehicleSpec{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Scores rescores specs the client already holds
func (h *CarHandler) Scores(w http.ResponseWriter, r *http.Request) {
	req := model.ScoresRequest{Preferences: model.DefaultPreferences()}
	if !decodeJSON(w, r, &req) {
		return
	}

	results := h.svc.RecomputeScores(req.Specs, req.Preferences)
	writeJSON(w, http.StatusOK, model.ScoresResponse{Results: results})
}

// Compare ranks the selected specs and builds the radar matrix
func (h *CarHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req model.CompareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cmp, err := h.svc.Compare(req.Specs)
	if errors.Is(err, matching.ErrEmptySelection) {
		writeError(w, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, errSearch, "comparison failed")
		return
	}

	writeJSON(w, http.StatusOK, model.CompareResponse{Ranking: cmp.Ranking, Radar: cmp.Radar})
}

func (h *CarHandler) PreferenceDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.PreferencesResponse{
		Defaults: model.DefaultPreferences(),
		Bounds:   model.DefaultPreferenceBounds(),
	})
}

func (h *CarHandler) Brands(w http.ResponseWriter, r *http.Request) {
	brands := h.catalog.Brands()
	if brands == nil {
		brands = []string{}
	}
	writeJSON(w, http.StatusOK, model.BrandsResponse{Brands: brands})
}
