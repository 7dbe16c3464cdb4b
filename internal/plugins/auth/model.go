// Package auth handles admin authentication for the portfolio. There is one
// admin identity whose password hash lives in db.json; a successful login
// returns a signed JWT that the admin UI sends as a bearer token.
//
// This is a CORE plugin -- every admin route depends on it.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// adminSubject is the subject of every issued token.
const adminSubject = "admin"

// tokenIssuer identifies tokens minted by this server.
const tokenIssuer = "portfolio"

// --- Request DTOs (bound from HTTP requests) ---

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of PUT /api/admin/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// --- Responses ---

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims are the JWT claims of an admin token. PasswordTag ties the token to
// the password hash it was issued under, so changing the password revokes
// every outstanding token.
type Claims struct {
	PasswordTag string `json:"pwt"`
	jwt.RegisteredClaims
}
