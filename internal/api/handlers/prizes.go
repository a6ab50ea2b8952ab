package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stamprally/backend/internal/api/httpx"
	"github.com/stamprally/backend/internal/models"
	"github.com/stamprally/backend/internal/services"
)

type PrizesHandler struct {
	Svc *services.PrizeService
}

func NewPrizesHandler(svc *services.PrizeService) *PrizesHandler {
	return &PrizesHandler{Svc: svc}
}

func (h *PrizesHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	prizes, err := h.Svc.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"prizes": prizes})
}

func (h *PrizesHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	prizes, err := h.Svc.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"prizes": prizes})
}

type createPrizeReq struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	PointsRequired int64  `json:"points_required"`
	Stock          int64  `json:"stock"`
	ImageURL       string `json:"image_url"`
}

func (h *PrizesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPrizeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	p, err := h.Svc.Create(r.Context(), models.Prize{
		Name:           req.Name,
		Description:    req.Description,
		PointsRequired: req.PointsRequired,
		Stock:          req.Stock,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"prize": p})
}

func (h *PrizesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var params services.UpdatePrizeParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	p, err := h.Svc.Update(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"prize": p})
}

func (h *PrizesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "prize deactivated"})
}
