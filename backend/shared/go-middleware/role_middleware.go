package middleware

import (
	"net/http"
	"slices"

	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
)

// RequireRole rejects sessions whose role is not listed. Mount it after AuthMiddleware.
func RequireRole(roles ...models.RoleType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, ok := RequestContextFrom(r.Context())
			if !ok {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing session", nil,
				)
				return
			}
			if !slices.Contains(roles, rc.Role) {
				utils.RespondErrorWithCode(
					w, http.StatusForbidden, utils.ErrCodeForbidden, "Role not permitted", nil,
				)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
