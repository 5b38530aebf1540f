package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/auth"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/render"
)

// AdminOnly rejects every request whose principal is not an admin. It is
// attached per route at registration time, so a route's access policy is
// visible right next to its handler.
func AdminOnly(renderer *render.Renderer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.PrincipalFromContext(r.Context())
			if err := auth.Authorize(principal); err != nil {
				renderer.RenderError(w, r, http.StatusForbidden, principal)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
