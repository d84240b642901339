package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"vibeguide/internal/domain"
	"vibeguide/internal/httputil"
)

// respondServiceError maps domain errors to HTTP responses. Typed
// errors implementing domain.HTTPError choose their own status;
// sentinels and unknown errors fall through to generic mappings.
func respondServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrStaleResult):
		// A newer request superseded this one; the caller should refetch.
		httputil.RespondError(w, http.StatusConflict, "superseded by a newer request")
	default:
		logger.Error("unexpected error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
