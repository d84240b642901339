package handler

import (
	"log/slog"
	"net/http"

	"vibeguide/internal/httputil"
	"vibeguide/internal/session"
)

// SessionHandler manages wizard session lifecycle and snapshots.
type SessionHandler struct {
	registry *session.Registry
	logger   *slog.Logger
}

func NewSessionHandler(registry *session.Registry, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{registry: registry, logger: logger}
}

// Create starts a new wizard session for the caller.
// POST /api/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	s := h.registry.Create(userID)
	h.logger.Info("session created", "session_id", s.ID, "user_id", userID)

	httputil.RespondJSON(w, http.StatusCreated, map[string]any{
		"sessionId": s.ID,
		"state":     s.Store.Snapshot(),
	})
}

// Get returns the full session state snapshot.
// GET /api/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, s.Store.Snapshot())
}

// Delete discards a session and its unsaved state.
// DELETE /api/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}
	h.registry.Remove(s.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ClearNotifications removes every queued notification.
// DELETE /api/sessions/{id}/notifications
func (h *SessionHandler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}
	s.Store.ClearNotifications()
	w.WriteHeader(http.StatusNoContent)
}

// RemoveNotification removes a single notification by ID.
// DELETE /api/sessions/{id}/notifications/{notificationId}
func (h *SessionHandler) RemoveNotification(w http.ResponseWriter, r *http.Request) {
	s, ok := resolveSession(w, r, h.registry)
	if !ok {
		return
	}
	s.Store.RemoveNotification(r.PathValue("notificationId"))
	w.WriteHeader(http.StatusNoContent)
}
