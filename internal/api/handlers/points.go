package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/stamprally/backend/internal/api/httpx"
	"github.com/stamprally/backend/internal/api/validate"
	"github.com/stamprally/backend/internal/middleware"
	"github.com/stamprally/backend/internal/services"
)

// PointsHandler exposes the two core engine operations plus the
// participant's own history.
type PointsHandler struct {
	Scans   *services.ScanService
	Redeems *services.RedeemService
	Reports *services.ReportingService
}

func NewPointsHandler(scans *services.ScanService, redeems *services.RedeemService, reports *services.ReportingService) *PointsHandler {
	return &PointsHandler{Scans: scans, Redeems: redeems, Reports: reports}
}

type scanReq struct {
	Code string  `json:"qr_code"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

func (h *PointsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaims(r.Context())
	var req scanReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	if err := validate.Collect(
		validate.Required("qr_code", req.Code),
		validate.Latitude("lat", req.Lat),
		validate.Longitude("lng", req.Lng),
	); err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := h.Scans.Scan(r.Context(), claims.UserID, req.Code, req.Lat, req.Lng)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("earned %d points", res.PointsEarned),
		"result":  res,
	})
}

func (h *PointsHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaims(r.Context())
	prizeID := chi.URLParam(r, "prizeID")
	res, err := h.Redeems.Redeem(r.Context(), claims.UserID, prizeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("redeemed %q", res.PrizeName),
		"result":  res,
	})
}

func (h *PointsHandler) History(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaims(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	entries, err := h.Reports.History(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"history": entries})
}
