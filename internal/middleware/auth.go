package middleware

import (
	"context"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/auth"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/users"
)

type userGetter interface {
	GetByID(ctx context.Context, id int) (*users.User, error)
}

// AuthMiddlewareHandler resolves the session cookie of every request into
// a principal. Missing, malformed or stale sessions resolve to the
// anonymous principal, never to an error response.
type AuthMiddlewareHandler struct {
	loginChecker auth.Checker
	users        userGetter
}

func NewAuthMiddlewareHandler(loginChecker auth.Checker, users userGetter) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		loginChecker: loginChecker,
		users:        users,
	}
}

func (h *AuthMiddlewareHandler) ResolvePrincipal() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := h.resolve(r)
			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (h *AuthMiddlewareHandler) resolve(r *http.Request) auth.Principal {
	token := auth.SessionTokenFromRequest(r)
	if token == "" {
		return auth.Anonymous
	}

	userID, err := h.loginChecker.GetUserID(r.Context(), token)
	if err != nil {
		if !errors.Is(err, auth.ErrNoSession) {
			log.Errorf("resolve principal, login check: %s", err)
		}
		return auth.Anonymous
	}

	// the session stores only the user id, the rest is loaded fresh so a
	// role change takes effect on the next request
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, users.ErrUserNotFound) {
			log.Errorf("resolve principal, get user %d: %s", userID, err)
		}
		return auth.Anonymous
	}

	return auth.Principal{
		UserID:   user.ID,
		Name:     user.Name,
		Role:     user.Role,
		LoggedIn: true,
	}
}
