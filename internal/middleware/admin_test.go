package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/auth"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/render"
)

func TestAdminOnly(t *testing.T) {
	renderer, err := render.New()
	require.NoError(t, err)

	adminOnly := AdminOnly(renderer)

	testCases := []struct {
		name               string
		principal          auth.Principal
		expectedStatusCode int
		expectNextCalled   bool
	}{
		{
			name:               "anonymous",
			principal:          auth.Anonymous,
			expectedStatusCode: http.StatusForbidden,
		},
		{
			name: "member",
			principal: auth.Principal{
				UserID:   2,
				Name:     "Mila",
				Role:     auth.RoleMember,
				LoggedIn: true,
			},
			expectedStatusCode: http.StatusForbidden,
		},
		{
			name: "admin",
			principal: auth.Principal{
				UserID:   1,
				Name:     "Site Owner",
				Role:     auth.RoleAdmin,
				LoggedIn: true,
			},
			expectedStatusCode: http.StatusOK,
			expectNextCalled:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			})

			req := httptest.NewRequest("GET", "/new-post", nil)
			req = req.WithContext(auth.ContextWithPrincipal(req.Context(), tc.principal))

			rr := httptest.NewRecorder()
			adminOnly(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			assert.Equal(t, tc.expectNextCalled, nextCalled)
		})
	}
}
