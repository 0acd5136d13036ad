package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-recon/internal/handler/http/response"
)

// RequireRole lets the request through when the token's role claim is one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			role, ok := claims["role"].(string)
			if !ok || role == "" {
				role = auth.RoleViewer
			}

			if !slices.Contains(roles, role) {
				response.HandleError(w, auth.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
