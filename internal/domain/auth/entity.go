// internal/domain/auth/entity.go
package auth

import (
	"database/sql"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int64          `json:"id" db:"id"`
	Email        string         `json:"email" db:"email"`
	PasswordHash string         `json:"-" db:"password_hash"`
	FullName     sql.NullString `json:"full_name,omitempty" db:"full_name"`
	Phone        sql.NullString `json:"phone,omitempty" db:"phone"`
	Role         Role           `json:"role" db:"role"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user may call admin-only endpoints.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
