package auth

import "errors"

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenExpired = errors.New("token has expired")
	ErrForbidden    = errors.New("role is not allowed to access this resource")
)

// Roles accepted on reconciliation endpoints. Tokens without a role claim
// are treated as RoleViewer.
const (
	RoleAdmin  = "admin"
	RoleHR     = "hr"
	RoleViewer = "viewer"
)
