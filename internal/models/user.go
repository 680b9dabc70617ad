package models

import (
	"database/sql"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles a portal account can hold.
const (
	RoleOwner      = "owner"
	RoleAccountant = "accountant"
)

// ValidRole reports whether role is one of the accepted account roles.
func ValidRole(role string) bool {
	return role == RoleOwner || role == RoleAccountant
}

type User struct {
	ID              string         `db:"id"`
	Username        string         `db:"username"`
	Email           string         `db:"email"`
	PasswordHash    string         `db:"password_hash"`
	Role            string         `db:"role"`
	TwoFactorSecret sql.NullString `db:"two_factor_secret"`
	CreatedAt       time.Time      `db:"created_at"`
}

// Profile is the public view of a user. It never carries the TOTP secret.
type Profile struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
}

// PublicProfile strips credential material from a user record.
func (u *User) PublicProfile() Profile {
	return Profile{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Role:             u.Role,
		TwoFactorEnabled: u.TwoFactorSecret.Valid && u.TwoFactorSecret.String != "",
		CreatedAt:        u.CreatedAt,
	}
}

// Claims defines the structure of the JWT claims.
type Claims struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}
