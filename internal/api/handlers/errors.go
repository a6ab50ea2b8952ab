package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/stamprally/backend/internal/api/httpx"
	"github.com/stamprally/backend/internal/api/validate"
	"github.com/stamprally/backend/internal/repository"
	"github.com/stamprally/backend/internal/services"
)

// writeServiceError maps the engine's named business failures onto HTTP
// responses, each carrying the details a client needs for a precise
// message.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		outOfRange   *services.OutOfRangeError
		alreadyScan  *services.AlreadyScannedError
		insufficient *services.InsufficientPointsError
		fieldErrs    validate.Errs
	)
	switch {
	case errors.Is(err, services.ErrTokenNotFound):
		httpx.WriteError(w, http.StatusNotFound, "token_not_found", "this QR code is not valid", nil)
	case errors.Is(err, services.ErrPrizeNotFound):
		httpx.WriteError(w, http.StatusNotFound, "prize_not_found", "prize not found", nil)
	case errors.As(err, &outOfRange):
		httpx.WriteError(w, http.StatusForbidden, "out_of_range", err.Error(), map[string]any{
			"distance_m": outOfRange.DistanceMeters,
			"radius_m":   outOfRange.RadiusMeters,
		})
	case errors.As(err, &alreadyScan):
		httpx.WriteError(w, http.StatusForbidden, "already_scanned", err.Error(), map[string]any{
			"next_eligible_at": alreadyScan.NextEligibleAt.Format(time.RFC3339),
		})
	case errors.Is(err, services.ErrOutOfStock):
		httpx.WriteError(w, http.StatusBadRequest, "out_of_stock", "this prize is out of stock", nil)
	case errors.As(err, &insufficient):
		httpx.WriteError(w, http.StatusBadRequest, "insufficient_points", err.Error(), map[string]any{
			"required":  insufficient.Required,
			"available": insufficient.Available,
		})
	case errors.Is(err, services.ErrUsernameTaken):
		httpx.WriteError(w, http.StatusBadRequest, "username_taken", "this username is already taken", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
	case errors.Is(err, services.ErrTransient):
		httpx.WriteError(w, http.StatusServiceUnavailable, "try_again", "temporary conflict, please retry", nil)
	case errors.Is(err, repository.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "not found", nil)
	case errors.As(err, &fieldErrs):
		httpx.WriteError(w, http.StatusBadRequest, "validation", fieldErrs.Error(), fieldErrs)
	default:
		slog.Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
