// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by every beedab token.
type Claims struct {
	IdentityID int64  `json:"identity_id"`
	Role       string `json:"role,omitempty"`
	Purpose    string `json:"purpose"` // access or refresh
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token belongs to an admin identity.
func (c *Claims) IsAdmin() bool {
	return c.Role == "admin"
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string) bool {
	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}
	return false
}
