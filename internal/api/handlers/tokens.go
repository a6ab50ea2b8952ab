package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stamprally/backend/internal/api/httpx"
	"github.com/stamprally/backend/internal/api/validate"
	"github.com/stamprally/backend/internal/middleware"
	"github.com/stamprally/backend/internal/services"
)

type TokensHandler struct {
	Svc *services.TokenService
}

func NewTokensHandler(svc *services.TokenService) *TokensHandler {
	return &TokensHandler{Svc: svc}
}

type createTokenReq struct {
	Label  string  `json:"label"`
	Points int64   `json:"points"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

func (h *TokensHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaims(r.Context())
	var req createTokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	if err := validate.Collect(
		validate.MinInt("points", req.Points, 1),
		validate.Latitude("lat", req.Lat),
		validate.Longitude("lng", req.Lng),
	); err != nil {
		writeServiceError(w, err)
		return
	}
	t, err := h.Svc.Create(r.Context(), claims.UserID, req.Label, req.Points, req.Lat, req.Lng)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"token": t})
}

func (h *TokensHandler) List(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.Svc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"tokens": tokens})
}

func (h *TokensHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	t, err := h.Svc.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"token": t})
}

type relocateReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *TokensHandler) Relocate(w http.ResponseWriter, r *http.Request) {
	var req relocateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	if err := validate.Collect(
		validate.Latitude("lat", req.Lat),
		validate.Longitude("lng", req.Lng),
	); err != nil {
		writeServiceError(w, err)
		return
	}
	t, err := h.Svc.Relocate(r.Context(), chi.URLParam(r, "id"), req.Lat, req.Lng)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"token": t})
}

func (h *TokensHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "token deleted"})
}
