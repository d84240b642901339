package handler

import (
	"net/http"

	"vibeguide/internal/auth"
	"vibeguide/internal/httputil"
	"vibeguide/internal/session"
)

// requireUser extracts the authenticated user ID or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

// resolveSession looks up the session in the {id} path segment and
// verifies it belongs to the caller. Foreign sessions read as not
// found so their existence is not leaked.
func resolveSession(w http.ResponseWriter, r *http.Request, registry *session.Registry) (*session.Session, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "session ID is required")
		return nil, false
	}

	s, ok := registry.Get(id)
	if !ok || s.UserID != userID {
		httputil.RespondError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return s, true
}
