package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carcompare-api/internal/model"
	"carcompare-api/internal/service"
)

// OwnerHeader carries the signed-in owner id; without it requests use the
// local device store
const OwnerHeader = "X-Owner-ID"

type FavoriteHandler struct {
	svc    *service.FavoriteService
	logger *slog.Logger
}

func NewFavoriteHandler(svc *service.FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{svc: svc, logger: logger}
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.svc.List(r.Context(), r.Header.Get(OwnerHeader))
	if err != nil {
		h.fail(w, err)
		return
	}
	if favorites == nil {
		favorites = []model.FavoriteRecord{}
	}
	writeJSON(w, http.StatusOK, model.FavoritesResponse{Favorites: favorites})
}

func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req model.FavoriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.svc.Add(r.Context(), r.Header.Get(OwnerHeader), req.Spec, req.Color)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *FavoriteHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), r.Header.Get(OwnerHeader), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Remove(r.Context(), r.Header.Get(OwnerHeader), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoriteHandler) UpdateColor(w http.ResponseWriter, r *http.Request) {
	var req model.ColorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.svc.UpdateColor(r.Context(), r.Header.Get(OwnerHeader), chi.URLParam(r, "id"), req.Color)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *FavoriteHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrFavoriteNotFound):
		writeError(w, http.StatusNotFound, errNotFound, "favorite not found")
	case errors.Is(err, service.ErrInvalidFavorite):
		writeError(w, http.StatusBadRequest, errInvalidRequest, err.Error())
	case errors.Is(err, service.ErrOwnerStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, errStore, err.Error())
	default:
		h.logger.Error("favorite store failed", "error", err)
		writeError(w, http.StatusInternalServerError, errStore, "favorites store failed")
	}
}
