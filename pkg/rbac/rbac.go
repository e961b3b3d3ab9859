// Package rbac provides role-based access control middleware.
package rbac

import (
	"net/http"

	"github.com/allinbuy/api/pkg/middleware"
	"github.com/allinbuy/api/pkg/response"
)

// HasRole returns middleware that allows access only to users with one of
// the given roles. The back-office routes mount it with "admin". Requires
// middleware.Auth to have already run.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok || !allowed[role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Guest blocks requests that carry a valid session, so logged-in clients
// cannot hit register or login again.
func Guest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.UserIDFromCtx(r); ok {
			response.Error(w, http.StatusConflict, "Ya has iniciado sesión")
			return
		}
		next.ServeHTTP(w, r)
	})
}
