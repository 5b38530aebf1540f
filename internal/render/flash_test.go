package render

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashRoundtrip(t *testing.T) {
	rr := httptest.NewRecorder()
	SetFlash(rr, "Log in first to be able to comment")

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)

	// next request presents the cookie
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rr2 := httptest.NewRecorder()

	msg := PopFlash(rr2, req)
	assert.Equal(t, "Log in first to be able to comment", msg)

	// pop clears the cookie
	clearCookies := rr2.Result().Cookies()
	require.Len(t, clearCookies, 1)
	assert.Equal(t, -1, clearCookies[0].MaxAge)
}

func TestPopFlash_absent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	assert.Empty(t, PopFlash(rr, req))
}

func TestNew_parsesAllPages(t *testing.T) {
	renderer, err := New()
	require.NoError(t, err)
	require.NotNil(t, renderer)
	for _, page := range pageFiles {
		assert.Contains(t, renderer.pages, page)
	}
}
