package middleware

import (
	"net/http"
	"strings"

	"vibeguide/internal/auth"
	"vibeguide/internal/httputil"
)

// Auth authenticates requests with a bearer JWT. When no verifier is
// configured (local development without an identity provider) every
// request is attributed to the local user instead of being rejected.
// Health checks bypass authentication.
func Auth(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			if verifier == nil {
				next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), auth.LocalUserID)))
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), claims.GetUserID())))
		})
	}
}
