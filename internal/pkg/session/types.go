// internal/pkg/session/types.go
package session

import "time"

type SessionData struct {
	JTI        string    `json:"jti"`
	IdentityID int64     `json:"identity_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	LoginAt    time.Time `json:"login_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
