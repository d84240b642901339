package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT claims structure accepted by the API. Any identity
// provider exposing a JWKS endpoint works; only the subject is
// required.
type Claims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email,omitempty"`
	Role                 string `json:"role,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}
