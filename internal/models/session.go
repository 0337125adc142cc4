package models

import "github.com/golang-jwt/jwt/v5"

// UserRole is the explicit role variant driving which workflow a user may
// mount.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleStaff   UserRole = "staff"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Valid reports whether the role is one of the known variants.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// JWTClaims are the panel's access-token claims. The upstream session token
// rides inside so the panel can act on the user's behalf.
type JWTClaims struct {
	Email         string   `json:"email"`
	Role          UserRole `json:"role"`
	UpstreamToken string   `json:"upstream_token"`
	jwt.RegisteredClaims
}

// SessionContext is the resolved authentication context handed to services
// in place of any ambient global state.
type SessionContext struct {
	UserID        string
	Email         string
	Role          UserRole
	UpstreamToken string
}

// SessionFromClaims builds a SessionContext from validated claims.
func SessionFromClaims(claims *JWTClaims) SessionContext {
	return SessionContext{
		UserID:        claims.Subject,
		Email:         claims.Email,
		Role:          claims.Role,
		UpstreamToken: claims.UpstreamToken,
	}
}
