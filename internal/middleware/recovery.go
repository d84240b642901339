package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"vibeguide/internal/httputil"
)

// Recovery converts handler panics into 500 problem responses. Panics
// on session routes log the session ID so the crash can be tied back
// to one wizard run.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					attrs := []any{
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"stack", string(debug.Stack()),
					}
					if id := sessionIDFromPath(r.URL.Path); id != "" {
						attrs = append(attrs, "session_id", id)
					}
					logger.Error("panic recovered", attrs...)

					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// sessionIDFromPath extracts the session segment from wizard API
// paths. Recovery runs before routing, so r.PathValue is not available
// here.
func sessionIDFromPath(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/sessions/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	return id
}
