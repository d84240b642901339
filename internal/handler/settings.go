package handler

import (
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"vibeguide/internal/domain/models"
	"vibeguide/internal/domain/repositories"
	"vibeguide/internal/httputil"
)

// SettingsHandler reads and writes per-user application settings.
type SettingsHandler struct {
	settings repositories.SettingsRepository
	logger   *slog.Logger
}

func NewSettingsHandler(settings repositories.SettingsRepository, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// Get returns the caller's settings, falling back to defaults when
// nothing has been saved yet.
// GET /api/users/me/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	settings, err := h.settings.Get(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, settings)
}

type UpdateSettingsRequest struct {
	models.Settings
}

func (r UpdateSettingsRequest) Validate() error {
	return validation.ValidateStruct(&r.Settings,
		validation.Field(&r.Theme, validation.Required, validation.In(
			models.ThemeSystem, models.ThemeLight, models.ThemeDark,
		)),
		validation.Field(&r.Language, validation.Required, validation.RuneLength(2, 16)),
	)
}

// Put replaces the caller's settings wholesale.
// PUT /api/users/me/settings
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.settings.Put(r.Context(), userID, &req.Settings); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, req.Settings)
}
